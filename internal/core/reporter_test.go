// ABOUTME: Tests for dashboard stats and per-source summaries
// ABOUTME: Runs against metadata files written into temp directories

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

func newTestReporter(t *testing.T, records []models.Chunk) (*Reporter, *QueryCounter) {
	t.Helper()
	store := storage.NewMetadataStore(filepath.Join(t.TempDir(), "meta.json"))
	if records != nil {
		if err := store.Save(records); err != nil {
			t.Fatal(err)
		}
	}
	counter := NewQueryCounter()
	return NewReporter(store, counter, 240, 5, logging.Discard()), counter
}

func TestStats_Fixture(t *testing.T) {
	r, counter := newTestReporter(t, fixtureRecords)
	counter.Increment()

	stats := r.Stats()
	if stats.Docs != 2 {
		t.Errorf("Docs = %d, want 2", stats.Docs)
	}
	if stats.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", stats.Chunks)
	}
	if stats.QueriesToday != 1 {
		t.Errorf("QueriesToday = %d, want 1", stats.QueriesToday)
	}
	if strings.Join(stats.Recent, ",") != "diabetes.pdf,cardio.pdf" {
		t.Errorf("Recent = %v", stats.Recent)
	}
}

func TestStats_NoMetadata(t *testing.T) {
	r, _ := newTestReporter(t, nil)

	stats := r.Stats()
	if stats.Docs != 0 || stats.Chunks != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
	if stats.Recent == nil {
		t.Error("Recent should be an empty list, not nil")
	}
}

func TestStats_CorruptMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := os.WriteFile(path, []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	r := NewReporter(storage.NewMetadataStore(path), NewQueryCounter(), 0, 0, logging.Discard())

	if stats := r.Stats(); stats.Chunks != 0 {
		t.Errorf("Chunks = %d, want 0 for unreadable metadata", stats.Chunks)
	}
	if sources := r.Sources(); len(sources) != 0 {
		t.Errorf("Sources() = %v, want empty", sources)
	}
}

func TestStats_RecentKeepsLastFive(t *testing.T) {
	var records []models.Chunk
	for i := 0; i < 7; i++ {
		records = append(records, models.Chunk{Text: "t", Source: fmt.Sprintf("doc%d.pdf", i)})
	}
	r, _ := newTestReporter(t, records)

	recent := r.Stats().Recent
	want := "doc2.pdf,doc3.pdf,doc4.pdf,doc5.pdf,doc6.pdf"
	if strings.Join(recent, ",") != want {
		t.Errorf("Recent = %v, want %s", recent, want)
	}
}

func TestSources(t *testing.T) {
	r, _ := newTestReporter(t, fixtureRecords)

	sources := r.Sources()
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].Name != "diabetes.pdf" || sources[0].Chunks != 2 {
		t.Errorf("sources[0] = %+v", sources[0])
	}
	if sources[0].Summary != fixtureRecords[0].Text+"..." {
		t.Errorf("summary = %q", sources[0].Summary)
	}
	if sources[1].Name != "cardio.pdf" || sources[1].Chunks != 1 {
		t.Errorf("sources[1] = %+v", sources[1])
	}
}

func TestSources_UnknownSource(t *testing.T) {
	r, _ := newTestReporter(t, []models.Chunk{{Text: "orphan"}, {Text: "x", Source: "a.pdf"}})

	sources := r.Sources()
	if sources[0].Name != models.UnknownSource {
		t.Errorf("Name = %q, want %q", sources[0].Name, models.UnknownSource)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc..."},
		{"exact", "abcde", 5, "abcde..."},
		{"cut", "abcdefgh", 5, "abcde..."},
		{"runes", "ñandú ñandú", 5, "ñandú..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.text, tt.n); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", 300)
	if got := Summarize(long, 240); len(got) != 243 {
		t.Errorf("len = %d, want 243", len(got))
	}
}
