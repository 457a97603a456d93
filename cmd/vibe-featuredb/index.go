package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/featuredb"
	"github.com/inodb/vibe-featuredb/internal/genome"
	"github.com/inodb/vibe-featuredb/internal/source"
)

// index bundles a loaded feature index with its reference genome.
type index struct {
	db      *featuredb.DB
	session featuredb.SessionID
	genome  genome.Genome // nil when no FASTA was configured
}

// policyFromConfig reads the index.* keys.
func policyFromConfig() featuredb.Policy {
	p := featuredb.DefaultPolicy()
	p.MaxDuplicates = viper.GetInt("index.max_duplicates")
	p.MaxAttributeLength = viper.GetInt("index.max_attribute_length")
	p.NonCanonical = viper.GetStringSlice("index.non_canonical")
	p.Headless = viper.GetBool("index.headless")
	return p
}

// loadIndex builds an index from the configured FASTA and feature files.
// reg may be nil.
func loadIndex(ctx context.Context, logger *zap.Logger, reg prometheus.Registerer) (*index, error) {
	idx := &index{}

	var validator featuredb.Validator
	if path := viper.GetString("genome.fasta"); path != "" {
		start := time.Now()
		g, err := genome.LoadFASTA(path)
		if err != nil {
			return nil, fmt.Errorf("load genome: %w", err)
		}
		logger.Info("loaded reference genome",
			zap.String("path", path),
			zap.Int("chromosomes", len(g.Chromosomes())),
			zap.Duration("elapsed", time.Since(start)))
		idx.genome = g
		validator = g
	}

	idx.db = featuredb.New(
		featuredb.WithPolicy(policyFromConfig()),
		featuredb.WithLogger(logger),
		featuredb.WithMetrics(featuredb.NewMetrics(reg)),
	)
	idx.session = idx.db.Create()

	paths := viper.GetStringSlice("load.features")
	if len(paths) == 0 {
		return idx, nil
	}

	loader := source.NewLoader(viper.GetInt("load.workers"))
	loader.SetLogger(logger)
	n, err := loader.Load(ctx, idx.db, idx.session, validator, paths)
	if err != nil {
		return nil, err
	}
	logger.Info("index ready",
		zap.Int("files", len(paths)),
		zap.Int("entries", n),
		zap.Int("keys", idx.db.Size(idx.session)))
	return idx, nil
}
