package source

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-featuredb/internal/feature"
	"github.com/inodb/vibe-featuredb/internal/featuredb"
)

// Loader decodes feature files concurrently and indexes them into a session.
type Loader struct {
	workers int
	logger  *zap.Logger
}

// NewLoader creates a loader decoding at most workers files at a time.
// If workers <= 0, runtime.NumCPU() is used.
func NewLoader(workers int) *Loader {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Loader{workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger used for load summaries.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load decodes every path and adds the features to the session. Files are
// decoded in parallel but indexed in the order given so that ranking ties
// resolve the same way on every run. It returns the number of accepted
// index entries. Any decode failure aborts the load before indexing.
func (l *Loader) Load(ctx context.Context, db *featuredb.DB, id featuredb.SessionID, v featuredb.Validator, paths []string) (int, error) {
	decoded := make([][]*feature.BasicFeature, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		i, path := i, path // per-iteration copies (go directive is 1.21)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			features, err := ReadFile(gctx, path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			l.logger.Debug("decoded feature file",
				zap.String("path", path),
				zap.Int("features", len(features)),
				zap.Duration("elapsed", time.Since(start)))
			decoded[i] = features
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for i, features := range decoded {
		fs := make([]feature.Feature, len(features))
		for j, f := range features {
			fs[j] = f
		}
		n := db.AddFeatures(id, fs, v)
		l.logger.Info("indexed feature file",
			zap.String("path", paths[i]),
			zap.Int("features", len(features)),
			zap.Int("entries", n),
			zap.String("session", id.String()))
		total += n
	}
	return total, nil
}

// LoadAll is a convenience wrapper around NewLoader(workers).Load.
func LoadAll(ctx context.Context, db *featuredb.DB, id featuredb.SessionID, v featuredb.Validator, paths []string, workers int) (int, error) {
	return NewLoader(workers).Load(ctx, db, id, v, paths)
}
