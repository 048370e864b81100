// internal/adapter/storage/hotline_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
)

// HotlineStore loads the hotline and geographic metadata datasets from
// Postgres. Row order preserves dataset order, which the hierarchy index and
// the default-location rule depend on.
type HotlineStore struct {
	db *pgxpool.Pool
}

// NewHotlineStore creates a new hotline store.
func NewHotlineStore(db *pgxpool.Pool) *HotlineStore {
	return &HotlineStore{db: db}
}

// EnsureSchema creates the dataset tables if they do not exist.
func (s *HotlineStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS geo_metadata (
			id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			document JSONB NOT NULL,
			loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS hotlines (
			position INT PRIMARY KEY,
			hotline_name TEXT NOT NULL,
			hotline_number TEXT NOT NULL,
			alternate_numbers TEXT[] NOT NULL DEFAULT '{}',
			category TEXT NOT NULL,
			city TEXT NOT NULL,
			province TEXT NOT NULL,
			region_name TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring dataset schema: %w", err)
		}
	}
	return nil
}

// ImportDatasets replaces both datasets in a single transaction.
func (s *HotlineStore) ImportDatasets(ctx context.Context, meta geo.Metadata, hotlines []hotline.Hotline) error {
	document, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	return s.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO geo_metadata (id, document, loaded_at)
			VALUES (1, $1, now())
			ON CONFLICT (id) DO UPDATE SET document = $1, loaded_at = now()
		`, document)
		if err != nil {
			return fmt.Errorf("storing metadata: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM hotlines`); err != nil {
			return fmt.Errorf("clearing hotlines: %w", err)
		}

		for i, h := range hotlines {
			_, err := tx.Exec(ctx, `
				INSERT INTO hotlines (
					position, hotline_name, hotline_number, alternate_numbers,
					category, city, province, region_name
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, i, h.Name, h.Number, h.AlternateNumbers, string(h.Category), h.City, h.Province, h.RegionName)
			if err != nil {
				return fmt.Errorf("storing hotline %q: %w", h.Name, err)
			}
		}

		return nil
	})
}

// LoadMetadata reads the geographic metadata dataset.
func (s *HotlineStore) LoadMetadata(ctx context.Context) (geo.Metadata, error) {
	var document []byte
	err := s.db.QueryRow(ctx, `SELECT document FROM geo_metadata WHERE id = 1`).Scan(&document)
	if err != nil {
		return geo.Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}

	var meta geo.Metadata
	if err := json.Unmarshal(document, &meta); err != nil {
		return geo.Metadata{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return meta, nil
}

// LoadHotlines reads the hotline dataset in stored order.
func (s *HotlineStore) LoadHotlines(ctx context.Context) ([]hotline.Hotline, error) {
	rows, err := s.db.Query(ctx, `
		SELECT hotline_name, hotline_number, alternate_numbers,
		       category, city, province, region_name
		FROM hotlines
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("reading hotlines: %w", err)
	}
	defer rows.Close()

	var hotlines []hotline.Hotline
	for rows.Next() {
		var h hotline.Hotline
		var category string
		err := rows.Scan(
			&h.Name, &h.Number, &h.AlternateNumbers,
			&category, &h.City, &h.Province, &h.RegionName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning hotline row: %w", err)
		}
		h.Category = hotline.Category(category)
		hotlines = append(hotlines, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hotline rows: %w", err)
	}
	return hotlines, nil
}
