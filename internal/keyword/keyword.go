// Package keyword provides a Bleve-backed full-text index over chunks.
package keyword

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/querio/querio/internal/models"
)

// Hit is a single keyword match.
type Hit struct {
	ID    string
	Score float64
}

// Index wraps a Bleve index over chunk content. Rebuilds construct a fresh
// index beside the live one and swap directories, so a failed rebuild leaves
// the previous index intact.
type Index struct {
	path  string
	index bleve.Index
	mu    sync.RWMutex
}

type chunkDoc struct {
	Content string `json:"content"`
}

// Standard analyzer: lowercase and tokenize without stemming, so a query
// term matches the exact word it was indexed as.
func indexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("content", text)
	im.DefaultMapping = doc
	return im
}

// New opens the index at path, creating it when absent.
func New(path string) (*Index, error) {
	var idx bleve.Index
	if _, err := os.Stat(path); err == nil {
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open keyword index: %w", err)
		}
	} else {
		var err error
		idx, err = bleve.New(path, indexMapping())
		if err != nil {
			return nil, fmt.Errorf("create keyword index: %w", err)
		}
	}
	return &Index{path: path, index: idx}, nil
}

// Rebuild replaces the index contents with the given chunks. The new index is
// built in full before the old one is replaced.
func (x *Index) Rebuild(ctx context.Context, chunks []models.Chunk) error {
	tmpPath := x.path + ".rebuild"
	if err := os.RemoveAll(tmpPath); err != nil {
		return fmt.Errorf("clear rebuild dir: %w", err)
	}

	next, err := bleve.New(tmpPath, indexMapping())
	if err != nil {
		return fmt.Errorf("create rebuild index: %w", err)
	}
	batch := next.NewBatch()
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			_ = next.Close()
			_ = os.RemoveAll(tmpPath)
			return err
		}
		if err := batch.Index(c.ID, chunkDoc{Content: c.Content}); err != nil {
			_ = next.Close()
			_ = os.RemoveAll(tmpPath)
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	if err := next.Batch(batch); err != nil {
		_ = next.Close()
		_ = os.RemoveAll(tmpPath)
		return fmt.Errorf("flush rebuild batch: %w", err)
	}
	if err := next.Close(); err != nil {
		_ = os.RemoveAll(tmpPath)
		return fmt.Errorf("close rebuild index: %w", err)
	}

	if err := x.swap(tmpPath); err != nil {
		_ = os.RemoveAll(tmpPath)
		return err
	}
	return nil
}

// swap replaces the live index directory with the fully built one at tmpPath.
// The old directory is set aside rather than deleted so any failure after the
// live index is closed can restore it.
func (x *Index) swap(tmpPath string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	oldPath := x.path + ".old"
	if err := os.RemoveAll(oldPath); err != nil {
		return fmt.Errorf("clear old index dir: %w", err)
	}
	if err := x.index.Close(); err != nil {
		return fmt.Errorf("close live index: %w", err)
	}
	if err := os.Rename(x.path, oldPath); err != nil {
		return x.reopenLive(fmt.Errorf("set aside old index: %w", err))
	}
	if err := os.Rename(tmpPath, x.path); err != nil {
		_ = os.Rename(oldPath, x.path)
		return x.reopenLive(fmt.Errorf("swap index: %w", err))
	}
	reopened, err := bleve.Open(x.path)
	if err != nil {
		_ = os.RemoveAll(x.path)
		_ = os.Rename(oldPath, x.path)
		return x.reopenLive(fmt.Errorf("reopen index: %w", err))
	}
	_ = os.RemoveAll(oldPath)
	x.index = reopened
	return nil
}

// reopenLive reopens the index at the live path after a failed swap so later
// searches keep working, and returns err annotated when even that fails.
func (x *Index) reopenLive(err error) error {
	reopened, openErr := bleve.Open(x.path)
	if openErr != nil {
		return fmt.Errorf("%w (restore previous index: %v)", err, openErr)
	}
	x.index = reopened
	return err
}

// Search runs a match query over chunk content and returns up to limit hits,
// best first.
func (x *Index) Search(_ context.Context, query string, limit int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	q := bleve.NewMatchQuery(query)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	hits := make([]Hit, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = Hit{ID: h.ID, Score: h.Score}
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Close closes the underlying index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
