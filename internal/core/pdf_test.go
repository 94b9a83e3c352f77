// ABOUTME: Tests for document text extraction
// ABOUTME: Covers plain-text pages, unreadable files, and page joining

package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/medrag/internal/logging"
)

func TestExtract_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Hypertension is high blood pressure."), 0644); err != nil {
		t.Fatal(err)
	}

	pages, err := NewPDFExtractor(logging.Discard()).Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].Number != 1 || pages[0].Text != "Hypertension is high blood pressure." {
		t.Errorf("page = %+v", pages[0])
	}
}

func TestExtract_MissingFile(t *testing.T) {
	e := NewPDFExtractor(logging.Discard())

	for _, name := range []string{"missing.pdf", "missing.md"} {
		if _, err := e.Extract(filepath.Join(t.TempDir(), name)); err == nil {
			t.Errorf("Extract(%s) should fail", name)
		}
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewPDFExtractor(logging.Discard()).Extract(path); err == nil {
		t.Error("Extract() should fail on a non-PDF file")
	}
}

func TestJoinPages(t *testing.T) {
	pages := []Page{{Number: 1, Text: "one"}, {Number: 2, Text: "two"}}
	if got := JoinPages(pages); got != "one\ntwo" {
		t.Errorf("JoinPages() = %q", got)
	}
	if got := JoinPages(nil); got != "" {
		t.Errorf("JoinPages(nil) = %q, want empty", got)
	}
}
