// ABOUTME: ChunkEngine splits extracted document text into overlapping fixed windows
// ABOUTME: Windows are measured in runes so multi-byte text is never cut mid-character
package core

import (
	"path/filepath"
	"strings"

	"github.com/harper/medrag/internal/models"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkEngine handles fixed-window chunking
type ChunkEngine struct {
	size    int
	overlap int
}

// NewChunkEngine creates a ChunkEngine. Out-of-range values are clamped:
// size <= 0 uses DefaultChunkSize, overlap < 0 uses 0, and an overlap that
// would stall the window uses size/2.
func NewChunkEngine(size, overlap int) *ChunkEngine {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &ChunkEngine{size: size, overlap: overlap}
}

// Size returns the window length in runes
func (ce *ChunkEngine) Size() int { return ce.size }

// Overlap returns the runes shared by consecutive windows
func (ce *ChunkEngine) Overlap() int { return ce.overlap }

// Chunk splits text into windows of Size runes, each starting Size-Overlap
// runes after the previous one. The last window ends at the end of text.
// source is reduced to its base filename.
func (ce *ChunkEngine) Chunk(text, source string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	name := ""
	if source != "" {
		name = filepath.Base(source)
	}

	runes := []rune(text)
	step := ce.size - ce.overlap

	var chunks []models.Chunk
	for start := 0; ; start += step {
		end := start + ce.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:     string(runes[start:end]),
			Source:   name,
			Position: len(chunks),
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// ExpectedChunks is the number of chunks Chunk produces for n runes of
// non-blank text
func (ce *ChunkEngine) ExpectedChunks(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= ce.overlap {
		return 1
	}
	step := ce.size - ce.overlap
	return (n - ce.overlap + step - 1) / step
}
