package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-featuredb/internal/source"
)

func newConvertCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert BED/GTF feature files to a DuckDB feature store",
		Long: `Decode the feature files given with -f and write them to a DuckDB feature
store. The store loads faster than the text formats and can be passed back
to any command with -f.`,
		Example: `  vibe-featuredb convert -f gencode.v49.annotation.gtf.gz -o gencode.duckdb
  vibe-featuredb convert -f genes.bed -f cytobands.bed -o features.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd.ErrOrStderr(), viper.GetStringSlice("load.features"), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

func runConvert(ctx context.Context, status io.Writer, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return errors.New("no input files (use -f)")
	}

	// Ensure output has .duckdb extension
	if source.DetectFormat(outputPath) != source.FormatDuckDB {
		outputPath = outputPath + ".duckdb"
	}

	// Remove existing output file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("removing existing file: %w", err)
		}
	}

	store, err := source.OpenStore(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, path := range inputs {
		features, err := source.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		if err := store.Insert(ctx, features); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(status, "  %s: %d features\n", filepath.Base(path), len(features))
	}

	count, err := store.Count()
	if err != nil {
		return fmt.Errorf("verifying count: %w", err)
	}

	sizeStr := "unknown"
	if stat, err := os.Stat(outputPath); err == nil {
		sizeStr = fmt.Sprintf("%.2f MB", float64(stat.Size())/(1024*1024))
	}

	fmt.Fprintf(status, "\nConversion complete!\n")
	fmt.Fprintf(status, "  Features: %d\n", count)
	fmt.Fprintf(status, "  Output size: %s\n", sizeStr)
	fmt.Fprintf(status, "  Output file: %s\n", outputPath)
	return nil
}
