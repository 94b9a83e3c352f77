// ABOUTME: Tests for the JSON metadata store
// ABOUTME: Verifies round trips, the missing-file sentinel, and parse errors
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/medrag/internal/models"
)

func TestMetadataStoreRoundTrip(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "nested", "meta.json"))

	records := []models.Chunk{
		{Text: "Take with food.", Source: "a.pdf", Position: 0},
		{Text: "Avoid alcohol.", Source: "a.pdf", Position: 1},
	}
	if err := store.Save(records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(got))
	}
	if got[1] != records[1] {
		t.Errorf("record 1 = %+v, want %+v", got[1], records[1])
	}

	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after Save")
	}
}

func TestMetadataStoreMissing(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.Load()
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("Load() error = %v, want ErrNoMetadata", err)
	}
}

func TestMetadataStoreEmptyAndNull(t *testing.T) {
	dir := t.TempDir()

	store := NewMetadataStore(filepath.Join(dir, "empty.json"))
	if err := store.Save(nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", got)
	}

	nullPath := filepath.Join(dir, "null.json")
	if err := os.WriteFile(nullPath, []byte("null"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = NewMetadataStore(nullPath).Load()
	if err != nil {
		t.Fatalf("Load(null) error = %v", err)
	}
	if got == nil {
		t.Error("null file should load as an empty slice")
	}
}

func TestMetadataStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewMetadataStore(path).Load()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrNoMetadata) {
		t.Error("corrupt file must not look like a missing one")
	}
}

func TestMetadataAcceptsOriginalRecordShape(t *testing.T) {
	// records written without a position field still load
	path := filepath.Join(t.TempDir(), "legacy.json")
	data := `[{"text":"a","source":"x.pdf"},{"text":"b"}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewMetadataStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got[1].SourceName() != models.UnknownSource {
		t.Errorf("SourceName() = %q, want %q", got[1].SourceName(), models.UnknownSource)
	}
}
