// internal/adapter/storage/file_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
)

// FileDatasetStore loads both datasets from JSON documents on disk, for
// deployments that ship the data with the binary instead of a database.
type FileDatasetStore struct {
	MetadataPath string
	HotlinesPath string
}

// NewFileDatasetStore creates a file-backed dataset store.
func NewFileDatasetStore(metadataPath, hotlinesPath string) *FileDatasetStore {
	return &FileDatasetStore{MetadataPath: metadataPath, HotlinesPath: hotlinesPath}
}

// LoadMetadata reads and decodes the metadata document.
func (s *FileDatasetStore) LoadMetadata(_ context.Context) (geo.Metadata, error) {
	raw, err := os.ReadFile(s.MetadataPath)
	if err != nil {
		return geo.Metadata{}, fmt.Errorf("reading metadata file: %w", err)
	}

	var doc geo.MetadataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return geo.Metadata{}, fmt.Errorf("decoding metadata file %s: %w", s.MetadataPath, err)
	}
	return doc.Metadata, nil
}

// LoadHotlines reads and decodes the hotline document.
func (s *FileDatasetStore) LoadHotlines(_ context.Context) ([]hotline.Hotline, error) {
	raw, err := os.ReadFile(s.HotlinesPath)
	if err != nil {
		return nil, fmt.Errorf("reading hotlines file: %w", err)
	}

	var doc hotline.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding hotlines file %s: %w", s.HotlinesPath, err)
	}
	return doc.Hotlines, nil
}
