package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// Store is a DuckDB-backed feature store. The convert command writes it from
// BED or GTF input; ReadFile reads it back.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates a feature store at path.
// Use an empty string for an in-memory database.
func OpenStore(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the features and exons tables if they don't exist.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS features (
			id BIGINT PRIMARY KEY,
			chrom VARCHAR,
			start BIGINT,
			end_ BIGINT,
			strand TINYINT,
			name VARCHAR,
			identifier VARCHAR,
			aliases VARCHAR,
			attributes VARCHAR
		);

		CREATE TABLE IF NOT EXISTS exons (
			feature_id BIGINT,
			exon_number INTEGER,
			start BIGINT,
			end_ BIGINT,
			coding_start BIGINT,
			coding_end BIGINT,
			attributes VARCHAR
		);

		CREATE INDEX IF NOT EXISTS idx_features_name ON features(name);
		CREATE INDEX IF NOT EXISTS idx_exons_feature ON exons(feature_id);
	`)
	return err
}

// Insert appends features and their exons in a single transaction.
func (s *Store) Insert(ctx context.Context, features []*feature.BasicFeature) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id) + 1, 0) FROM features").Scan(&next); err != nil {
		return fmt.Errorf("next feature id: %w", err)
	}

	featureStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO features (id, chrom, start, end_, strand, name, identifier, aliases, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare feature insert: %w", err)
	}
	defer featureStmt.Close()

	exonStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exons (feature_id, exon_number, start, end_, coding_start, coding_end, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare exon insert: %w", err)
	}
	defer exonStmt.Close()

	for _, f := range features {
		aliases, err := json.Marshal(f.Aliases())
		if err != nil {
			return fmt.Errorf("encode aliases: %w", err)
		}
		attrs, err := json.Marshal(f.Attributes())
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}

		id := next
		next++
		if _, err := featureStmt.ExecContext(ctx, id, f.Chr(), f.Start(), f.End(), int8(f.Strand()),
			f.Name(), f.Identifier(), string(aliases), string(attrs)); err != nil {
			return fmt.Errorf("insert feature: %w", err)
		}

		for _, e := range f.Exons() {
			exonAttrs, err := json.Marshal(e.Attributes)
			if err != nil {
				return fmt.Errorf("encode exon attributes: %w", err)
			}
			if _, err := exonStmt.ExecContext(ctx, id, e.Number, e.Start, e.End,
				e.CodingStart, e.CodingEnd, string(exonAttrs)); err != nil {
				return fmt.Errorf("insert exon: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Features loads every stored feature in insertion order.
func (s *Store) Features(ctx context.Context) ([]*feature.BasicFeature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chrom, start, end_, strand, name, identifier, aliases, attributes
		FROM features
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var features []*feature.BasicFeature
	byID := make(map[int64]*feature.BasicFeature)
	for rows.Next() {
		var (
			id                     int64
			chrom                  string
			start, end             int64
			strand                 int8
			name, identifier       string
			aliasesJSON, attrsJSON sql.NullString
		)
		if err := rows.Scan(&id, &chrom, &start, &end, &strand, &name, &identifier, &aliasesJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}

		f := feature.New(chrom, start, end, feature.Strand(strand)).
			SetName(name).
			SetIdentifier(identifier)

		var aliases []string
		if err := decodeJSON(aliasesJSON, &aliases); err != nil {
			return nil, fmt.Errorf("decode aliases of feature %d: %w", id, err)
		}
		for _, a := range aliases {
			f.AddAlias(a)
		}

		var attrs feature.Attributes
		if err := decodeJSON(attrsJSON, &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes of feature %d: %w", id, err)
		}
		for key, values := range attrs {
			for _, v := range values {
				f.SetAttribute(key, v)
			}
		}

		features = append(features, f)
		byID[id] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadExons(ctx, byID); err != nil {
		return nil, err
	}
	return features, nil
}

func (s *Store) loadExons(ctx context.Context, byID map[int64]*feature.BasicFeature) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feature_id, exon_number, start, end_, coding_start, coding_end, attributes
		FROM exons
		ORDER BY feature_id, start
	`)
	if err != nil {
		return fmt.Errorf("query exons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			e         feature.Exon
			attrsJSON sql.NullString
		)
		if err := rows.Scan(&id, &e.Number, &e.Start, &e.End, &e.CodingStart, &e.CodingEnd, &attrsJSON); err != nil {
			return fmt.Errorf("scan exon: %w", err)
		}
		if err := decodeJSON(attrsJSON, &e.Attributes); err != nil {
			return fmt.Errorf("decode exon attributes: %w", err)
		}
		if f, ok := byID[id]; ok {
			f.AddExon(&e)
		}
	}
	return rows.Err()
}

// Count returns the number of stored features.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM features").Scan(&count)
	return count, err
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}
