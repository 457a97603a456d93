package featuredb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-featuredb/internal/feature"
	"github.com/inodb/vibe-featuredb/internal/genome"
)

// Forward-strand coding sequence on chr1[10:40): ATG AAA GGG TTT CGT GAA ...
// Codon 5 is CGT (Arg) at chr1:22-24.
const forwardCDS = "ATGAAAGGGTTTCGTGAAGAAGAAGAAGAA"

func testGenome() *genome.Memory {
	return genome.NewMemory(map[string]string{
		"chr1": strings.Repeat("A", 10) + forwardCDS + strings.Repeat("A", 10),
		// Reverse strand: chr2[27:30) = CAT reads ATG on the minus strand.
		"chr2": strings.Repeat("G", 27) + "CAT",
	})
}

func codingFeature(name, chrom string, start, end int64, strand feature.Strand) *feature.BasicFeature {
	f := feature.New(chrom, start, end, strand).SetName(name)
	f.AddExon(&feature.Exon{Start: start, End: end, CodingStart: start, CodingEnd: end})
	return f
}

func TestMutationByAminoAcid(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	f := codingFeature("GENE1", "chr1", 10, 40, feature.Positive)
	require.True(t, db.Put(s, "GENE1", f, g))

	tests := []struct {
		name    string
		pos     int
		refAA   string
		mutAA   string
		wantPos []int64
	}{
		{"Arg to His by one substitution", 5, "R", "H", []int64{22}},
		{"three letter names", 5, "Arg", "Cys", []int64{22}},
		{"full names are case-insensitive", 5, "arginine", "leucine", []int64{22}},
		{"ref mismatch", 5, "G", "H", nil},
		{"target needs two substitutions", 5, "R", "W", nil},
		{"start codon", 1, "M", "I", []int64{10}},
		{"past the end of the CDS", 11, "E", "K", nil},
		{"position zero", 0, "M", "I", nil},
		{"unknown name", 5, "R", "H", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "gene1"
			if tt.name == "unknown name" {
				name = "GENE2"
			}
			got, err := db.MutationByAminoAcid(s, name, tt.pos, tt.refAA, tt.mutAA, g)
			require.NoError(t, err)
			assert.Len(t, got, len(tt.wantPos))
			for _, p := range tt.wantPos {
				assert.Same(t, f, got[p])
			}
		})
	}
}

func TestMutationByAminoAcid_ReverseStrand(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	f := codingFeature("REV", "chr2", 0, 30, feature.Negative)
	db.Put(s, "REV", f, g)

	got, err := db.MutationByAminoAcid(s, "REV", 1, "Met", "Ile", g)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, f, got[29])
}

func TestMutationByAminoAcid_UnknownAminoAcid(t *testing.T) {
	db := New()
	s := db.Create()
	got, err := db.MutationByAminoAcid(s, "GENE1", 5, "R", "Zzz", testGenome())
	assert.ErrorIs(t, err, ErrUnknownAminoAcid)
	assert.Empty(t, got)
}

func TestMutationByAminoAcid_NonCodingCandidateSkipped(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	db.Put(s, "GENE1", feature.New("chr1", 10, 40, feature.Positive).SetName("GENE1"), g)

	got, err := db.MutationByAminoAcid(s, "GENE1", 5, "R", "H", g)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMutationByAminoAcid_CollaboratorFailure(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	good := codingFeature("GENE1", "chr1", 10, 40, feature.Positive)
	missing := codingFeature("GENE1", "chr9", 10, 40, feature.Positive)
	db.Put(s, "GENE1", good, nil)
	db.Put(s, "GENE1", missing, nil)

	got, err := db.MutationByAminoAcid(s, "GENE1", 5, "R", "H", g)
	assert.ErrorIs(t, err, genome.ErrUnknownChromosome)
	require.Len(t, got, 1, "a failing candidate must not abort the others")
	assert.Same(t, good, got[22])
}

func TestMutationByNucleotide(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	fwd := codingFeature("NT", "chr1", 10, 40, feature.Positive)
	rev := codingFeature("NT", "chr2", 0, 30, feature.Negative)
	db.Put(s, "NT", fwd, g)
	db.Put(s, "NT", rev, g)

	tests := []struct {
		name  string
		pos   int
		refNT string
		want  map[int64]feature.Feature
	}{
		// fwd base 1 = chr1:10 'A'; rev base 1 = chr2:29 'T', complemented 'A'.
		{"both strands", 1, "A", map[int64]feature.Feature{10: fwd, 29: rev}},
		{"lower case ref", 1, "a", map[int64]feature.Feature{10: fwd, 29: rev}},
		// fwd base 2 = chr1:11 'T'; rev base 2 = chr2:28 'A', complemented 'T'.
		{"second base", 2, "T", map[int64]feature.Feature{11: fwd, 28: rev}},
		// fwd base 13 = chr1:22 'C'; rev base 13 = chr2:17 'G' -> 'C'.
		{"codon 5 first base", 13, "C", map[int64]feature.Feature{22: fwd, 17: rev}},
		{"no match", 1, "G", map[int64]feature.Feature{}},
		{"outside feature", 31, "A", map[int64]feature.Feature{}},
		{"position zero", 0, "A", map[int64]feature.Feature{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.MutationByNucleotide(s, "nt", tt.pos, tt.refNT, g)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMutationByNucleotide_CollaboratorFailure(t *testing.T) {
	db := New()
	s := db.Create()
	g := testGenome()
	good := feature.New("chr1", 10, 40, feature.Positive).SetName("NT")
	bad := feature.New("chr1", 100, 140, feature.Positive).SetName("NT") // beyond chr1
	db.Put(s, "NT", good, nil)
	db.Put(s, "NT", bad, nil)

	got, err := db.MutationByNucleotide(s, "NT", 1, "A", g)
	assert.ErrorIs(t, err, genome.ErrOutOfRange)
	assert.Equal(t, map[int64]feature.Feature{10: good}, got)
}

func TestMutation_UnknownSession(t *testing.T) {
	db := New()
	s := NewSessionID()
	g := testGenome()

	aa, err := db.MutationByAminoAcid(s, "GENE1", 5, "R", "H", g)
	require.NoError(t, err)
	assert.Empty(t, aa)

	nt, err := db.MutationByNucleotide(s, "GENE1", 1, "A", g)
	require.NoError(t, err)
	assert.Empty(t, nt)
}
