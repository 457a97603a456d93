// Package source decodes feature files (BED, GTF and DuckDB feature stores)
// and loads them into a featuredb session.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// ErrUnknownFormat is returned for paths whose extension names no supported format.
var ErrUnknownFormat = errors.New("unknown feature file format")

// Format identifies a feature file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatBED
	FormatGTF
	FormatDuckDB
)

func (f Format) String() string {
	switch f {
	case FormatBED:
		return "bed"
	case FormatGTF:
		return "gtf"
	case FormatDuckDB:
		return "duckdb"
	default:
		return "unknown"
	}
}

// DetectFormat guesses the format from the file extension, ignoring a
// trailing ".gz".
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")))
	switch ext {
	case ".bed", ".bed12":
		return FormatBED
	case ".gtf":
		return FormatGTF
	case ".duckdb", ".db":
		return FormatDuckDB
	default:
		return FormatUnknown
	}
}

// ReadFile decodes every feature in path.
func ReadFile(ctx context.Context, path string) ([]*feature.BasicFeature, error) {
	switch DetectFormat(path) {
	case FormatBED:
		return decodeFile(path, ParseBED)
	case FormatGTF:
		return decodeFile(path, ParseGTF)
	case FormatDuckDB:
		// OpenStore creates missing stores; a reader must not.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open feature store: %w", err)
		}
		s, err := OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Features(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func decodeFile(path string, parse func(io.Reader) ([]*feature.BasicFeature, error)) ([]*feature.BasicFeature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	features, err := parse(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}
