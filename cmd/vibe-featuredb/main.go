// Package main provides the vibe-featuredb command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-featuredb/internal/server"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe-featuredb",
		Short: "Feature name index",
		Long: `vibe-featuredb indexes genomic features (genes, transcripts, BED records) by
name, identifier, alias and short attribute values, and answers exact, prefix and
mutation queries against the index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-featuredb.yaml)")
	pf.StringSliceP("features", "f", nil, "Feature files to index (BED, GTF, DuckDB; may be gzipped)")
	pf.String("fasta", "", "Reference genome FASTA (validates chromosomes, enables mutation queries)")
	pf.Int("workers", 0, "Files decoded in parallel (0 = all CPUs)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("log-format", "console", "Log format: console, json")

	cobra.CheckErr(viper.BindPFlag("load.features", pf.Lookup("features")))
	cobra.CheckErr(viper.BindPFlag("genome.fasta", pf.Lookup("fasta")))
	cobra.CheckErr(viper.BindPFlag("load.workers", pf.Lookup("workers")))
	cobra.CheckErr(viper.BindPFlag("log.level", pf.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log.format", pf.Lookup("log-format")))

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newMutationCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-featuredb version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads the config file and VIBE_FEATUREDB_* environment variables.
func initConfig() error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".vibe-featuredb")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_FEATUREDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	server.Version = version
	return nil
}

func setDefaults() {
	viper.SetDefault("index.max_duplicates", 20)
	viper.SetDefault("index.max_attribute_length", 20)
	viper.SetDefault("index.non_canonical", []string{})
	viper.SetDefault("index.headless", false)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.rate_limit", 0.0)
	viper.SetDefault("server.burst", 100)
}

// newLogger builds a zap logger from log.level and log.format.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var cfg zap.Config
	switch viper.GetString("log.format") {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", viper.GetString("log.format"))
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// defaultConfigPath returns ~/.vibe-featuredb.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vibe-featuredb.yaml"), nil
}
