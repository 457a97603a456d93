package featuredb

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/aminoacid"
	"github.com/inodb/vibe-featuredb/internal/feature"
	"github.com/inodb/vibe-featuredb/internal/genome"
)

// ErrUnknownAminoAcid is returned when an amino acid name cannot be resolved.
var ErrUnknownAminoAcid = errors.New("unknown amino acid")

// MutationByAminoAcid finds features named exactly name whose codon at the
// 1-based proteinPos encodes refAA and can be turned into mutAA by a single
// base substitution. The result maps the genome position of each matching
// codon's first base to its feature.
//
// An empty map means no candidate carried refAA at that position. Sequence
// failures for individual candidates are joined into the returned error;
// the remaining candidates are still evaluated.
func (db *DB) MutationByAminoAcid(id SessionID, name string, proteinPos int, refAA, mutAA string, g genome.Genome) (map[int64]feature.Feature, error) {
	db.metrics.query("mutation_aa")
	results := make(map[int64]feature.Feature)

	target, ok := aminoacid.ByName(mutAA)
	if !ok {
		return results, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, mutAA)
	}
	if _, ok := aminoacid.ByName(refAA); !ok {
		return results, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, refAA)
	}

	var errs []error
	for _, f := range db.Candidates(id, name) {
		codon, err := feature.CodonAt(f, g, proteinPos)
		if err != nil {
			db.logger.Warn("codon lookup failed",
				zap.String("name", name),
				zap.String("chrom", f.Chr()),
				zap.Int64("start", f.Start()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s %s:%d: %w", name, f.Chr(), f.Start(), err))
			continue
		}
		if codon == nil {
			continue
		}
		if !codon.AminoAcid.EqualsByName(refAA) {
			continue
		}
		if len(aminoacid.SNPTargets(codon.Sequence, target)) > 0 {
			results[codon.GenomePositions[0]] = f
		}
	}
	return results, errors.Join(errs...)
}

// MutationByNucleotide finds features named exactly name that carry refNT at
// the 1-based featurePos, counted along the feature in transcription order.
// On the negative strand the reference base is complemented before the
// comparison. The result maps genome position to feature.
func (db *DB) MutationByNucleotide(id SessionID, name string, featurePos int, refNT string, g genome.Genome) (map[int64]feature.Feature, error) {
	db.metrics.query("mutation_nt")
	results := make(map[int64]feature.Feature)

	var errs []error
	for _, f := range db.Candidates(id, name) {
		pos := feature.ToGenome(f, int64(featurePos-1))
		if pos < 0 {
			continue
		}
		seq, err := g.Sequence(f.Chr(), pos, pos+1)
		if err != nil {
			db.logger.Warn("sequence fetch failed",
				zap.String("name", name),
				zap.String("chrom", f.Chr()),
				zap.Int64("pos", pos),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s %s:%d: %w", name, f.Chr(), pos, err))
			continue
		}
		if len(seq) == 0 {
			continue
		}

		base := seq[0]
		if f.Strand() == feature.Negative {
			base = aminoacid.Complement(base)
		}
		if strings.EqualFold(string(base), refNT) {
			results[pos] = f
		}
	}
	return results, errors.Join(errs...)
}
