// ABOUTME: Vector search result types shared by the index and query engine
// ABOUTME: Defines SearchHit with the negative-ID "no match" sentinel
package models

// NoMatch is the ID reported for result slots the index could not fill
const NoMatch = -1

// SearchHit is one nearest-neighbour result. ID is the position in the index
// (and therefore in the metadata list); Distance is squared Euclidean.
type SearchHit struct {
	ID       int     `json:"id"`
	Distance float32 `json:"distance"`
}

// IsMatch reports whether the hit refers to a stored vector
func (h SearchHit) IsMatch() bool {
	return h.ID >= 0
}

// Answer is the outcome of a question put to the query engine
type Answer struct {
	Text     string  `json:"answer"`
	Contexts []Chunk `json:"contexts,omitempty"`
}

// ScoredChunk is a retrieved chunk with its distance to the query
type ScoredChunk struct {
	Chunk
	Distance float32 `json:"distance"`
}
