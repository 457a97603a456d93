package genome

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFASTA = `>chr1 test chromosome
ACGTACGTAC
GTACGT
>chr17_random
NNNNAAAA
>2
gattaca
`

func TestParseFASTA(t *testing.T) {
	g, err := ParseFASTA(strings.NewReader(testFASTA))
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "chr1", "chr17_random"}, g.Chromosomes())
	assert.Equal(t, int64(16), g.Length("chr1"))
	assert.Equal(t, int64(7), g.Length("2"))
	assert.Equal(t, int64(-1), g.Length("chrX"))

	seq, err := g.Sequence("chr1", 8, 12)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(seq))
}

func TestMemory_ChromosomeAliases(t *testing.T) {
	g := NewMemory(map[string]string{"chr1": "ACGT", "2": "TTTT"})

	assert.True(t, g.ChromosomeExists("chr1"))
	assert.True(t, g.ChromosomeExists("1"))
	assert.True(t, g.ChromosomeExists("chr2"))
	assert.False(t, g.ChromosomeExists("chr3"))

	seq, err := g.Sequence("1", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "CG", string(seq))
}

func TestMemory_SequenceErrors(t *testing.T) {
	g := NewMemory(map[string]string{"chr1": "ACGT"})

	_, err := g.Sequence("chr9", 0, 1)
	assert.ErrorIs(t, err, ErrUnknownChromosome)

	_, err = g.Sequence("chr1", 3, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = g.Sequence("chr1", -1, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	seq, err := g.Sequence("chr1", 2, 2)
	require.NoError(t, err)
	assert.Empty(t, seq)
}

func TestMemory_AddChromosome(t *testing.T) {
	g := NewMemory(nil)
	assert.False(t, g.ChromosomeExists("chrM"))

	g.AddChromosome("chrM", []byte("GATC"))
	assert.True(t, g.ChromosomeExists("M"))
	assert.Equal(t, int64(4), g.Length("chrM"))

	g.AddChromosome("chrM", []byte("GA"))
	assert.Equal(t, int64(2), g.Length("chrM"), "a second add replaces the sequence")
}

func TestMemory_SequenceIsCopy(t *testing.T) {
	g := NewMemory(map[string]string{"chr1": "ACGT"})
	seq, err := g.Sequence("chr1", 0, 4)
	require.NoError(t, err)
	seq[0] = 'N'

	again, _ := g.Sequence("chr1", 0, 1)
	assert.Equal(t, "A", string(again))
}

func TestLoadFASTA_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.fa.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testFASTA))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	g, err := LoadFASTA(path)
	require.NoError(t, err)
	assert.True(t, g.ChromosomeExists("chr17_random"))
}

func TestLoadFASTA_Missing(t *testing.T) {
	_, err := LoadFASTA(filepath.Join(t.TempDir(), "missing.fa"))
	assert.Error(t, err)
}

func TestAlias(t *testing.T) {
	assert.Equal(t, "1", Alias("chr1"))
	assert.Equal(t, "chrX", Alias("X"))
}
