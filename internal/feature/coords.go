package feature

import (
	"bytes"
	"fmt"

	"github.com/inodb/vibe-featuredb/internal/aminoacid"
)

// SequenceSource returns reference bases for a 0-based half-open range.
type SequenceSource interface {
	Sequence(chr string, start, end int64) ([]byte, error)
}

// block is a contiguous genomic range used for coordinate walks.
type block struct {
	start, end int64
}

// exonBlocks returns the feature's exons (or the feature itself when it has
// none) as blocks in transcription order.
func exonBlocks(f Feature) []block {
	exons := f.Exons()
	if len(exons) == 0 {
		return orient([]block{{f.Start(), f.End()}}, f.Strand())
	}
	blocks := make([]block, 0, len(exons))
	for _, e := range exons {
		blocks = append(blocks, block{e.Start, e.End})
	}
	return orient(blocks, f.Strand())
}

// codingBlocks returns the coding portions of the exons in transcription order.
func codingBlocks(f Feature) []block {
	var blocks []block
	for _, e := range f.Exons() {
		if e.IsCoding() {
			blocks = append(blocks, block{e.CodingStart, e.CodingEnd})
		}
	}
	return orient(blocks, f.Strand())
}

func orient(blocks []block, strand Strand) []block {
	if strand == Negative {
		for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
			blocks[i], blocks[j] = blocks[j], blocks[i]
		}
	}
	return blocks
}

// walk maps a 0-based offset along blocks to a genome coordinate.
func walk(blocks []block, strand Strand, offset int64) int64 {
	if offset < 0 {
		return -1
	}
	for _, b := range blocks {
		length := b.end - b.start
		if offset < length {
			if strand == Negative {
				return b.end - 1 - offset
			}
			return b.start + offset
		}
		offset -= length
	}
	return -1
}

// ToGenome maps a 0-based offset along the feature (spliced over exons, in
// transcription order) to a 0-based genome coordinate. Returns -1 if the
// offset falls outside the feature.
func ToGenome(f Feature, offset int64) int64 {
	return walk(exonBlocks(f), f.Strand(), offset)
}

// CodingToGenome maps a 0-based offset along the coding sequence to a genome
// coordinate. Returns -1 for non-coding features or out of range offsets.
func CodingToGenome(f Feature, offset int64) int64 {
	return walk(codingBlocks(f), f.Strand(), offset)
}

// CodonAt returns the codon at a 1-based protein position, or nil if the
// feature has no codon there. Bases are read from seq and complemented on
// the negative strand.
func CodonAt(f Feature, seq SequenceSource, proteinPos int) (*aminoacid.Codon, error) {
	if proteinPos < 1 {
		return nil, nil
	}
	blocks := codingBlocks(f)
	if len(blocks) == 0 {
		return nil, nil
	}

	codon := &aminoacid.Codon{}
	cdsStart := int64(proteinPos-1) * 3
	for i := range codon.GenomePositions {
		pos := walk(blocks, f.Strand(), cdsStart+int64(i))
		if pos < 0 {
			return nil, nil
		}
		codon.GenomePositions[i] = pos
	}

	bases := make([]byte, 3)
	for i, pos := range codon.GenomePositions {
		b, err := seq.Sequence(f.Chr(), pos, pos+1)
		if err != nil {
			return nil, fmt.Errorf("fetch base %s:%d: %w", f.Chr(), pos, err)
		}
		if len(b) == 0 {
			return nil, nil
		}
		bases[i] = b[0]
		if f.Strand() == Negative {
			bases[i] = aminoacid.Complement(bases[i])
		}
	}

	codon.Sequence = string(bytes.ToUpper(bases))
	codon.AminoAcid = aminoacid.Translate(codon.Sequence)
	return codon, nil
}
