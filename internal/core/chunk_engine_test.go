// ABOUTME: Tests for ChunkEngine fixed-window chunking
// ABOUTME: Verifies the chunk-count law, overlap content, and parameter clamping

package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewChunkEngine_Clamps(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		overlap     int
		wantSize    int
		wantOverlap int
	}{
		{"defaults kept", 1000, 200, 1000, 200},
		{"zero size", 0, 10, 1000, 10},
		{"negative size", -5, 0, 1000, 0},
		{"negative overlap", 100, -1, 100, 0},
		{"overlap equals size", 100, 100, 100, 50},
		{"overlap exceeds size", 10, 40, 10, 5},
		{"size one", 1, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := NewChunkEngine(tt.size, tt.overlap)
			if ce.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", ce.Size(), tt.wantSize)
			}
			if ce.Overlap() != tt.wantOverlap {
				t.Errorf("Overlap() = %d, want %d", ce.Overlap(), tt.wantOverlap)
			}
		})
	}
}

func TestChunk_EmptyText(t *testing.T) {
	ce := NewChunkEngine(10, 2)

	for _, text := range []string{"", "   ", "\t\n\r"} {
		if chunks := ce.Chunk(text, "a.pdf"); chunks != nil {
			t.Errorf("Chunk(%q) returned %d chunks, want none", text, len(chunks))
		}
	}
}

func TestChunk_CountLaw(t *testing.T) {
	params := []struct{ size, overlap int }{
		{1000, 200}, {10, 3}, {7, 0}, {5, 4}, {2, 1}, {1, 0},
	}

	for _, p := range params {
		ce := NewChunkEngine(p.size, p.overlap)
		for n := 1; n <= 60; n++ {
			text := strings.Repeat("x", n)
			got := len(ce.Chunk(text, "doc.pdf"))

			want := 1
			if n > p.overlap {
				step := p.size - p.overlap
				want = (n - p.overlap + step - 1) / step
			}
			if got != want {
				t.Errorf("size=%d overlap=%d n=%d: got %d chunks, want %d", p.size, p.overlap, n, got, want)
			}
			if got != ce.ExpectedChunks(n) {
				t.Errorf("ExpectedChunks(%d) = %d, Chunk produced %d", n, ce.ExpectedChunks(n), got)
			}
		}
	}
}

func TestChunk_LongDocument(t *testing.T) {
	ce := NewChunkEngine(1000, 200)
	text := strings.Repeat("a", 5000)

	// ceil((5000-200)/800) = 6
	if got := len(ce.Chunk(text, "long.pdf")); got != 6 {
		t.Errorf("got %d chunks, want 6", got)
	}
}

func TestChunk_OverlapContent(t *testing.T) {
	ce := NewChunkEngine(4, 2)
	chunks := ce.Chunk("abcdefgh", "doc.pdf")

	want := []string{"abcd", "cdef", "efgh"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
		if chunks[i].Position != i {
			t.Errorf("chunk %d Position = %d", i, chunks[i].Position)
		}
	}
}

func TestChunk_ShortTail(t *testing.T) {
	ce := NewChunkEngine(4, 1)
	chunks := ce.Chunk("abcdefghij", "doc.pdf")

	// windows start at 0, 3, 6; the third reaches the end
	want := []string{"abcd", "defg", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
	}
}

func TestChunk_SourceIsBaseName(t *testing.T) {
	ce := NewChunkEngine(10, 0)
	chunks := ce.Chunk("some text", "data/raw/guidelines.pdf")

	if chunks[0].Source != "guidelines.pdf" {
		t.Errorf("Source = %q, want guidelines.pdf", chunks[0].Source)
	}
}

func TestChunk_MultiByteRunes(t *testing.T) {
	ce := NewChunkEngine(3, 1)
	chunks := ce.Chunk("αβγδεζ", "greek.pdf")

	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c.Text)
		}
		if n := utf8.RuneCountInString(c.Text); n > 3 {
			t.Errorf("chunk %d has %d runes, want <= 3", i, n)
		}
	}
	if chunks[0].Text != "αβγ" {
		t.Errorf("first chunk = %q, want αβγ", chunks[0].Text)
	}
}
