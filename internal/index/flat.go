// ABOUTME: Exact nearest-neighbour index over float32 vectors (squared L2)
// ABOUTME: Position i in the index is position i in the metadata list
package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/harper/medrag/internal/models"
)

// ErrDimensionMismatch is returned when a vector's length differs from the index
var ErrDimensionMismatch = errors.New("vector dimension does not match index")

// Flat stores every vector and scans all of them on search. It is not safe
// for concurrent mutation; callers build a new Flat and publish it whole.
type Flat struct {
	dim     int
	model   string
	vectors [][]float32
}

// NewFlat creates an empty index for vectors of length dim produced by model
func NewFlat(dim int, model string) *Flat {
	return &Flat{dim: dim, model: model}
}

func (f *Flat) Dimension() int { return f.dim }

// Model names the embedder that produced the vectors
func (f *Flat) Model() string { return f.model }

// Len is the number of stored vectors
func (f *Flat) Len() int { return len(f.vectors) }

// Vector returns the stored vector at position id
func (f *Flat) Vector(id int) ([]float32, bool) {
	if id < 0 || id >= len(f.vectors) {
		return nil, false
	}
	return f.vectors[id], true
}

// Add appends vectors in order. Either all are added or none.
func (f *Flat) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d, index has %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
	}
	for _, v := range vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		f.vectors = append(f.vectors, cp)
	}
	return nil
}

// Search returns exactly k hits ordered by ascending distance. Slots beyond
// the number of stored vectors carry models.NoMatch.
func (f *Flat) Search(query []float32, k int) ([]models.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}

	all := make([]models.SearchHit, len(f.vectors))
	for id, v := range f.vectors {
		all[id] = models.SearchHit{ID: id, Distance: squaredL2(query, v)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})

	hits := make([]models.SearchHit, k)
	for i := range hits {
		if i < len(all) {
			hits[i] = all[i]
		} else {
			hits[i] = models.SearchHit{ID: models.NoMatch, Distance: -1}
		}
	}
	return hits, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
