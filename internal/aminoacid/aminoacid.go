// Package aminoacid provides the standard genetic code and nucleotide helpers
// used by mutation lookups.
package aminoacid

import "strings"

// AminoAcid is one entry of the translation table.
type AminoAcid struct {
	Symbol byte   // Single letter code, '*' for stop
	Abbrev string // Three letter code (e.g. Arg)
	Name   string // Full name (e.g. Arginine)
}

// Unknown is returned for codons that cannot be translated.
var Unknown = AminoAcid{Symbol: 'X', Abbrev: "Xaa", Name: "Unknown"}

var aminoAcids = []AminoAcid{
	{'A', "Ala", "Alanine"},
	{'C', "Cys", "Cysteine"},
	{'D', "Asp", "Aspartic acid"},
	{'E', "Glu", "Glutamic acid"},
	{'F', "Phe", "Phenylalanine"},
	{'G', "Gly", "Glycine"},
	{'H', "His", "Histidine"},
	{'I', "Ile", "Isoleucine"},
	{'K', "Lys", "Lysine"},
	{'L', "Leu", "Leucine"},
	{'M', "Met", "Methionine"},
	{'N', "Asn", "Asparagine"},
	{'P', "Pro", "Proline"},
	{'Q', "Gln", "Glutamine"},
	{'R', "Arg", "Arginine"},
	{'S', "Ser", "Serine"},
	{'T', "Thr", "Threonine"},
	{'V', "Val", "Valine"},
	{'W', "Trp", "Tryptophan"},
	{'Y', "Tyr", "Tyrosine"},
	{'*', "Ter", "Stop"},
}

var (
	bySymbol = make(map[byte]AminoAcid, len(aminoAcids))
	byName   = make(map[string]AminoAcid, 3*len(aminoAcids))
)

func init() {
	for _, aa := range aminoAcids {
		bySymbol[aa.Symbol] = aa
		byName[string(aa.Symbol)] = aa
		byName[strings.ToUpper(aa.Abbrev)] = aa
		byName[strings.ToUpper(aa.Name)] = aa
	}
	byName["STOP"] = bySymbol['*']
	byName["X"] = Unknown
}

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// ByName resolves a single letter, three letter or full amino acid name,
// case-insensitively.
func ByName(name string) (AminoAcid, bool) {
	aa, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	return aa, ok
}

// EqualsByName reports whether name resolves to the same amino acid.
func (a AminoAcid) EqualsByName(name string) bool {
	other, ok := ByName(name)
	return ok && other.Symbol == a.Symbol
}

// String returns the three letter code.
func (a AminoAcid) String() string {
	return a.Abbrev
}

// Translate translates a DNA codon to its amino acid.
// Returns Unknown for malformed codons.
func Translate(codon string) AminoAcid {
	if len(codon) != 3 {
		return Unknown
	}
	if sym, ok := codonTable[strings.ToUpper(codon)]; ok {
		return bySymbol[sym]
	}
	return Unknown
}

// SNPTargets returns every codon reachable from codon by a single base
// substitution that encodes target.
func SNPTargets(codon string, target AminoAcid) []string {
	if len(codon) != 3 {
		return nil
	}
	codon = strings.ToUpper(codon)

	var targets []string
	for posInCodon := 0; posInCodon < 3; posInCodon++ {
		for _, base := range []byte("ACGT") {
			if base == codon[posInCodon] {
				continue
			}
			mut := MutateCodon(codon, posInCodon, base)
			if Translate(mut).Symbol == target.Symbol {
				targets = append(targets, mut)
			}
		}
	}
	return targets
}

// MutateCodon applies a substitution at positionInCodon (0, 1 or 2).
func MutateCodon(codon string, positionInCodon int, newBase byte) string {
	if len(codon) != 3 || positionInCodon < 0 || positionInCodon > 2 {
		return codon
	}
	var buf [3]byte
	copy(buf[:], codon)
	buf[positionInCodon] = newBase
	return string(buf[:])
}

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return 'N'
	}
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Codon is a translated three-base coding unit located on the genome.
type Codon struct {
	Sequence string // Bases in transcription order
	// GenomePositions holds the 0-based genome coordinate of each base,
	// in transcription order.
	GenomePositions [3]int64
	AminoAcid       AminoAcid
}
