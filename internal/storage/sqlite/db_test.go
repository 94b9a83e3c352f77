// ABOUTME: Tests for SQLite database connection and schema initialization
// ABOUTME: Verifies database creation, schema, and basic operations
package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.QueryRow("SELECT 1").Scan(new(int)); err != nil {
		t.Errorf("query on in-memory database failed: %v", err)
	}

	if db.Path() != ":memory:" {
		t.Errorf("Path() = %v, want :memory:", db.Path())
	}
}

func TestSchemaInitialization(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", "ingest_jobs").Scan(&name)
	if err != nil {
		t.Errorf("Table ingest_jobs does not exist: %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "jobs.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestOpenIsReentrant(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	first, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := first.Exec(`INSERT INTO ingest_jobs (id, path, chunk_size, overlap) VALUES ('a', 'x.pdf', 1000, 200)`); err != nil {
		t.Fatalf("insert error = %v", err)
	}
	_ = first.Close()

	second, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer func() { _ = second.Close() }()

	var count int
	if err := second.QueryRow("SELECT COUNT(*) FROM ingest_jobs").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("First Close() error = %v", err)
	}

	// conn is closed but a second call must not panic
	_ = db.Close()
}

func TestIndexesExist(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	indexes := []string{
		"idx_jobs_status",
		"idx_jobs_path",
		"idx_jobs_created",
	}

	for _, idx := range indexes {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		if err != nil {
			t.Errorf("Index %s does not exist: %v", idx, err)
		}
	}
}
