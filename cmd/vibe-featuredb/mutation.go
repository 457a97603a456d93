package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/feature"
	"github.com/inodb/vibe-featuredb/internal/output"
)

var errNoGenome = errors.New("mutation queries need a reference genome (--fasta or genome.fasta)")

func newMutationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutation",
		Short: "Locate mutations on named features",
		Long: `Find the genome positions at which a named feature carries the given
reference residue and, for protein changes, where a single nucleotide
substitution produces the alternate amino acid.`,
	}

	cmd.AddCommand(newMutationAACmd())
	cmd.AddCommand(newMutationNTCmd())
	return cmd
}

func newMutationAACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aa <name> <protein-position> <ref-aa> <alt-aa>",
		Short: "Protein-level mutation (e.g. BRCA1 1699 R Q)",
		Example: `  vibe-featuredb mutation aa --fasta GRCh38.fa.gz -f gencode.gtf.gz BRCA1 1699 Arg Gln
  vibe-featuredb mutation aa --fasta GRCh38.fa.gz -f genes.bed KRAS 12 G C`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("invalid protein position %q", args[1])
			}
			return runMutation(cmd, fmt.Sprintf("%s p.%s%d%s", args[0], args[2], pos, args[3]),
				func(idx *index) (map[int64]feature.Feature, error) {
					return idx.db.MutationByAminoAcid(idx.session, args[0], pos, args[2], args[3], idx.genome)
				})
		},
	}
}

func newMutationNTCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "nt <name> <feature-position> <ref-base>",
		Short:   "Nucleotide-level mutation (1-based position along the feature)",
		Example: `  vibe-featuredb mutation nt --fasta GRCh38.fa.gz -f genes.bed TP53 215 C`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("invalid feature position %q", args[1])
			}
			return runMutation(cmd, fmt.Sprintf("%s c.%d%s", args[0], pos, args[2]),
				func(idx *index) (map[int64]feature.Feature, error) {
					return idx.db.MutationByNucleotide(idx.session, args[0], pos, args[2], idx.genome)
				})
		},
	}
}

func runMutation(cmd *cobra.Command, label string, query func(*index) (map[int64]feature.Feature, error)) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	idx, err := loadIndex(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	if idx.genome == nil {
		return errNoGenome
	}

	found, err := query(idx)
	if err != nil {
		if len(found) == 0 {
			return err
		}
		logger.Warn("some features could not be evaluated", zap.Error(err))
	}
	return writeMutations(cmd.OutOrStdout(), label, found)
}

func writeMutations(out io.Writer, label string, found map[int64]feature.Feature) error {
	positions := make([]int64, 0, len(found))
	for pos := range found {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	w := output.NewMutationTabWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, pos := range positions {
		if err := w.WriteMutation(label, pos, found[pos]); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return w.Flush()
}
