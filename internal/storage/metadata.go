// ABOUTME: JSON metadata file holding one chunk record per index position
// ABOUTME: Saves atomically so a reader never sees a half-written array
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harper/medrag/internal/models"
)

// ErrNoMetadata is returned when the metadata file does not exist
var ErrNoMetadata = errors.New("metadata file not found")

// MetadataStore reads and writes the chunk metadata array
type MetadataStore struct {
	path string
}

// NewMetadataStore creates a store backed by the file at path
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

// Path returns the metadata file path
func (m *MetadataStore) Path() string {
	return m.path
}

// Load reads every record in file order
func (m *MetadataStore) Load() ([]models.Chunk, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoMetadata
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var records []models.Chunk
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if records == nil {
		records = []models.Chunk{}
	}
	return records, nil
}

// Save overwrites the file with records
func (m *MetadataStore) Save(records []models.Chunk) error {
	if records == nil {
		records = []models.Chunk{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace metadata: %w", err)
	}
	return nil
}
