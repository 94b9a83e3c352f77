// ABOUTME: Binary persistence of the flat index in a bbolt database file
// ABOUTME: Writes go to a temp file renamed over the target so readers never see a partial index
package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketMeta    = []byte("meta")
	bucketVectors = []byte("vectors")

	keyDimension = []byte("dimension")
	keyModel     = []byte("model")
	keyCount     = []byte("count")
)

// ErrCorruptIndex is returned when the index file is structurally invalid
var ErrCorruptIndex = errors.New("corrupt index file")

// Save writes the index to path atomically
func (f *Flat) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	db, err := bbolt.Open(tmp, 0644, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyDimension, encodeUint64(uint64(f.dim))); err != nil {
			return err
		}
		if err := meta.Put(keyModel, []byte(f.model)); err != nil {
			return err
		}
		if err := meta.Put(keyCount, encodeUint64(uint64(len(f.vectors)))); err != nil {
			return err
		}

		vecs, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}
		// keys are appended in order so bbolt can fill pages sequentially
		vecs.FillPercent = 1.0
		for id, v := range f.vectors {
			if err := vecs.Put(encodeUint64(uint64(id)), encodeVector(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write index: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

// Load reads an index written by Save. A missing file returns an error
// wrapping os.ErrNotExist.
func Load(path string) (*Flat, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	var f Flat
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		vecs := tx.Bucket(bucketVectors)
		if meta == nil || vecs == nil {
			return fmt.Errorf("%w: missing buckets", ErrCorruptIndex)
		}

		dim, ok := decodeUint64(meta.Get(keyDimension))
		if !ok {
			return fmt.Errorf("%w: missing dimension", ErrCorruptIndex)
		}
		count, ok := decodeUint64(meta.Get(keyCount))
		if !ok {
			return fmt.Errorf("%w: missing count", ErrCorruptIndex)
		}
		f.dim = int(dim)
		f.model = string(meta.Get(keyModel))
		f.vectors = make([][]float32, 0, count)

		c := vecs.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			id, ok := decodeUint64(k)
			if !ok || id != uint64(len(f.vectors)) {
				return fmt.Errorf("%w: vector keys out of sequence", ErrCorruptIndex)
			}
			vec, ok := decodeVector(v, f.dim)
			if !ok {
				return fmt.Errorf("%w: vector %d has wrong length", ErrCorruptIndex, id)
			}
			f.vectors = append(f.vectors, vec)
		}
		if uint64(len(f.vectors)) != count {
			return fmt.Errorf("%w: expected %d vectors, found %d", ErrCorruptIndex, count, len(f.vectors))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func encodeUint64(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func decodeUint64(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

// decodeVector copies out of the bbolt page; the slice is only valid inside the transaction
func decodeVector(b []byte, dim int) ([]float32, bool) {
	if len(b) != 4*dim {
		return nil, false
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
