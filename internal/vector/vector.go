// Package vector provides a persisted brute-force vector index.
package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Result is a single similarity hit.
type Result struct {
	ID    string
	Score float64
}

// Index holds unit-normalized vectors in memory and searches them by inner
// product, which equals cosine similarity for normalized inputs. The index is
// safe for concurrent use.
type Index struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewIndex creates an empty index for vectors of the given dimensionality.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &Index{dimensions: dimensions}, nil
}

// LoadIndex reads a previously saved index from path.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("index file has zero dimensions")
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}

	idx := &Index{
		dimensions: int(dim),
		ids:        make([]string, 0, n),
		vectors:    make([][]float32, 0, n),
	}
	vecBuf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("read id length: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return nil, fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(vecBuf[j*4:]))
		}
		idx.ids = append(idx.ids, string(idBytes))
		idx.vectors = append(idx.vectors, vec)
	}
	return idx, nil
}

// Add appends vectors under the given IDs. Every vector must match the index
// dimensionality.
func (idx *Index) Add(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != idx.dimensions {
			return fmt.Errorf("vector %q has %d dimensions, index expects %d", id, len(vectors[i]), idx.dimensions)
		}
		vec := make([]float32, idx.dimensions)
		copy(vec, vectors[i])
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, vec)
	}
	return nil
}

// Search returns the top-k entries by inner product with query, best first.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), idx.dimensions)
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if k <= 0 || len(idx.ids) == 0 {
		return nil, nil
	}

	results := make([]Result, len(idx.ids))
	for i, vec := range idx.vectors {
		var dot float64
		for j := 0; j < idx.dimensions; j++ {
			dot += float64(query[j]) * float64(vec[j])
		}
		results[i] = Result{ID: idx.ids[i], Score: dot}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Size returns the number of stored vectors.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Dimensions returns the vector dimensionality.
func (idx *Index) Dimensions() int { return idx.dimensions }

// Save writes the index to path. Format, all little-endian: dimensions (u32),
// count (u32), then per entry: id length (u32), id bytes, vector floats.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(idx.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(idx.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	vecBuf := make([]byte, idx.dimensions*4)
	for i, id := range idx.ids {
		if err := binary.Write(f, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("write id length: %w", err)
		}
		if _, err := io.WriteString(f, id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		for j, v := range idx.vectors[i] {
			binary.LittleEndian.PutUint32(vecBuf[j*4:], math.Float32bits(v))
		}
		if _, err := f.Write(vecBuf); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return f.Sync()
}
