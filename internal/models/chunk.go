// ABOUTME: Chunk represents a fixed-window slice of extracted document text
// ABOUTME: Chunks are the unit of embedding and the records of the metadata file
package models

import (
	"errors"
	"strings"
)

// UnknownSource is reported for metadata records that carry no source name
const UnknownSource = "Unknown"

// Chunk is a contiguous piece of document text tagged with where it came from.
// Chunks are immutable once created.
type Chunk struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Position int    `json:"position"`
}

// SourceName returns the chunk's source, falling back to UnknownSource
func (c Chunk) SourceName() string {
	if strings.TrimSpace(c.Source) == "" {
		return UnknownSource
	}
	return c.Source
}

// Validate checks that a chunk can be stored
func (c Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.Position < 0 {
		return errors.New("chunk position cannot be negative")
	}
	return nil
}
