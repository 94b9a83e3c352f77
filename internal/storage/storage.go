// ABOUTME: Holds the live index and metadata behind one atomically swapped snapshot
// ABOUTME: Queries read a snapshot; ingestion writes files and swaps in a new one
package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/index"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
)

var (
	// ErrNotReady means no index has been loaded yet
	ErrNotReady = errors.New("index not loaded")

	// ErrCorrespondence means the index and metadata disagree on length
	ErrCorrespondence = errors.New("index and metadata lengths differ")
)

// Snapshot is an immutable pairing of an index with its metadata.
// Metadata is nil when the index exists but the metadata file does not.
type Snapshot struct {
	Index    *index.Flat
	Metadata []models.Chunk
	LoadedAt time.Time
}

// HasMetadata reports whether the metadata file was present at load time
func (s *Snapshot) HasMetadata() bool {
	return s.Metadata != nil
}

// Storage owns the on-disk index and metadata files and the live snapshot
type Storage struct {
	indexPath string
	metadata  *MetadataStore
	current   atomic.Pointer[Snapshot]
	mu        sync.Mutex // serialises writes and reloads
	logger    *log.Logger
}

// New creates a Storage for the given file paths. Nothing is read until Load.
func New(indexPath, metadataPath string, logger *log.Logger) *Storage {
	return &Storage{
		indexPath: indexPath,
		metadata:  NewMetadataStore(metadataPath),
		logger:    logging.Component(logger, "storage"),
	}
}

// IndexPath returns the index file path
func (s *Storage) IndexPath() string {
	return s.indexPath
}

// Metadata returns the metadata file store
func (s *Storage) Metadata() *MetadataStore {
	return s.metadata
}

// Snapshot returns the live snapshot, or nil when Unready
func (s *Storage) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ready reports whether an index is loaded
func (s *Storage) Ready() bool {
	return s.current.Load() != nil
}

// Load reads both files and swaps in a new snapshot. On any failure the
// previous snapshot stays live.
func (s *Storage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Storage) loadLocked() error {
	idx, err := index.Load(s.indexPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrNotReady, s.indexPath)
	}
	if err != nil {
		s.logger.Error("index load failed", "path", s.indexPath, "err", err)
		return fmt.Errorf("failed to load index: %w", err)
	}

	records, err := s.metadata.Load()
	switch {
	case errors.Is(err, ErrNoMetadata):
		s.logger.Warn("index loaded without metadata", "path", s.metadata.Path())
		records = nil
	case err != nil:
		s.logger.Error("metadata load failed", "path", s.metadata.Path(), "err", err)
		return err
	case len(records) != idx.Len():
		s.logger.Error("index and metadata out of step", "index", idx.Len(), "metadata", len(records))
		return fmt.Errorf("%w: index has %d vectors, metadata has %d records", ErrCorrespondence, idx.Len(), len(records))
	}

	s.current.Store(&Snapshot{
		Index:    idx,
		Metadata: records,
		LoadedAt: time.Now(),
	})
	s.logger.Info("index loaded", "vectors", idx.Len(), "model", idx.Model())
	return nil
}

// Write persists a new index and metadata pair. The live snapshot is
// unchanged until the next Load.
func (s *Storage) Write(idx *index.Flat, records []models.Chunk) error {
	if idx.Len() != len(records) {
		return fmt.Errorf("%w: index has %d vectors, metadata has %d records", ErrCorrespondence, idx.Len(), len(records))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := idx.Save(s.indexPath); err != nil {
		return err
	}
	if err := s.metadata.Save(records); err != nil {
		return err
	}
	return nil
}
