package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-featuredb/internal/featuredb"
	"github.com/inodb/vibe-featuredb/internal/output"
)

func newSearchCmd() *cobra.Command {
	var (
		limit int
		all   bool
		exact bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find features by name prefix",
		Long: `Search the indexed features for keys starting with the query. Keys are
names, identifiers, aliases and short attribute values, compared case-insensitively.`,
		Example: `  vibe-featuredb search -f genes.bed BRCA
  vibe-featuredb search -f gencode.gtf.gz --exact --all TP53
  vibe-featuredb search -f features.duckdb --limit 5 ENST0000026`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			idx, err := loadIndex(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}

			w := output.NewTabWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}

			query := args[0]
			var matches []featuredb.Match
			if exact {
				if c := idx.db.Candidates(idx.session, query); len(c) > 0 {
					matches = []featuredb.Match{{Key: featuredb.Normalize(query), Features: c}}
				}
			} else {
				matches = idx.db.PrefixQuery(idx.session, query)
			}

			for i, m := range matches {
				if limit > 0 && i >= limit {
					break
				}
				features := m.Features
				if !all {
					features = features[:1]
				}
				for _, f := range features {
					if err := w.WriteMatch(m.Key, f); err != nil {
						return fmt.Errorf("writing result: %w", err)
					}
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of keys to report (0 = no limit)")
	cmd.Flags().BoolVar(&all, "all", false, "Report every candidate of a key, not just the best one")
	cmd.Flags().BoolVar(&exact, "exact", false, "Only report the key equal to the query")

	return cmd
}
