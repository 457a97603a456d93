package aminoacid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		codon string
		want  byte
	}{
		{"ATG", 'M'},
		{"atg", 'M'},
		{"TAA", '*'},
		{"TGA", '*'},
		{"CGT", 'R'},
		{"AGA", 'R'},
		{"GGG", 'G'},
		{"NNN", 'X'},
		{"AT", 'X'},
		{"", 'X'},
	}
	for _, tt := range tests {
		t.Run(tt.codon, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.codon).Symbol)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"R", "r", "Arg", "ARG", "arginine", " Arginine "} {
		aa, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, byte('R'), aa.Symbol, name)
	}

	stop, ok := ByName("Stop")
	require.True(t, ok)
	assert.Equal(t, byte('*'), stop.Symbol)

	ter, ok := ByName("Ter")
	require.True(t, ok)
	assert.Equal(t, stop, ter)

	_, ok = ByName("Zzz")
	assert.False(t, ok)
}

func TestEqualsByName(t *testing.T) {
	arg := Translate("CGA")
	assert.True(t, arg.EqualsByName("R"))
	assert.True(t, arg.EqualsByName("arg"))
	assert.False(t, arg.EqualsByName("K"))
	assert.False(t, arg.EqualsByName("bogus"))
	assert.Equal(t, "Arg", arg.String())
}

func TestSNPTargets(t *testing.T) {
	his, _ := ByName("H")
	assert.ElementsMatch(t, []string{"CAT"}, SNPTargets("CGT", his))

	// CGT -> TGG needs two substitutions.
	trp, _ := ByName("W")
	assert.Empty(t, SNPTargets("CGT", trp))

	// Synonymous substitutions at the wobble position.
	arg, _ := ByName("R")
	assert.ElementsMatch(t, []string{"CGA", "CGC", "CGG"}, SNPTargets("cgt", arg))

	stop, _ := ByName("*")
	assert.ElementsMatch(t, []string{"TAG", "TGA"}, SNPTargets("TGG", stop))

	assert.Nil(t, SNPTargets("CG", his))
}

func TestMutateCodon(t *testing.T) {
	assert.Equal(t, "TGT", MutateCodon("CGT", 0, 'T'))
	assert.Equal(t, "CAT", MutateCodon("CGT", 1, 'A'))
	assert.Equal(t, "CGT", MutateCodon("CGT", 3, 'A'))
	assert.Equal(t, "CG", MutateCodon("CG", 0, 'A'))
}

func TestComplement(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{'A', 'T'}, {'T', 'A'}, {'G', 'C'}, {'C', 'G'},
		{'a', 't'}, {'t', 'a'}, {'g', 'c'}, {'c', 'g'},
		{'N', 'N'}, {'X', 'N'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Complement(tt.in), "Complement(%c)", tt.in)
	}
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "CAT", ReverseComplement("ATG"))
	assert.Equal(t, "ACGTN", ReverseComplement("NACGT"))
	assert.Equal(t, "", ReverseComplement(""))
}
