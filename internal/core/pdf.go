// ABOUTME: Page-ordered text extraction from PDF files via ledongthuc/pdf
// ABOUTME: Plain text and markdown files are read as a single page
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"

	"github.com/harper/medrag/internal/logging"
)

// Page is the extracted text of one page, numbered from 1
type Page struct {
	Number int
	Text   string
}

// PDFExtractor reads document text in page order
type PDFExtractor struct {
	logger *log.Logger
}

// NewPDFExtractor creates an extractor
func NewPDFExtractor(logger *log.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logging.Component(logger, "extract")}
}

// Extract returns the text of every page that decodes. Pages that fail are
// skipped with a warning; a file that cannot be opened is an error.
func (e *PDFExtractor) Extract(path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return []Page{{Number: 1, Text: string(data)}}, nil
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := e.pageText(p)
		if err != nil {
			e.logger.Warn("skipping unreadable page", "file", filepath.Base(path), "page", i, "err", err)
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

// pageText recovers from decoder panics on malformed content streams
func (e *PDFExtractor) pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}

// JoinPages concatenates page texts in order, one newline between pages
func JoinPages(pages []Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}
