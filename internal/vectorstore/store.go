// Package vectorstore orchestrates embeddings, the vector index, the chunk
// store, and answer generation.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/querio/querio/internal/embedding"
	"github.com/querio/querio/internal/keyword"
	"github.com/querio/querio/internal/llm"
	"github.com/querio/querio/internal/models"
	"github.com/querio/querio/internal/storage"
	"github.com/querio/querio/internal/vector"
)

// ErrNotInitialized is returned by Query and Search before any index has been
// built or loaded.
var ErrNotInitialized = errors.New("vector store not initialized")

const answerPromptFormat = "Answer based on the context below:\n\n%s\n\nQuery: %s"

// Stats describes the persisted index.
type Stats struct {
	TotalChunks int64
	SizeBytes   int64
	LastUpdated *time.Time
}

// Store ties the embedding backend, the persisted vector index, the chunk
// store, and the keyword index together. The vector index pointer is nil
// until Initialize loads one from disk or Rebuild creates one; all swaps
// happen under mu.
type Store struct {
	embedder  embedding.Embedder
	chunks    *storage.ChunkStore
	keywords  *keyword.Index
	generator llm.Generator
	indexPath string
	vectorDir string
	log       *zap.Logger

	mu    sync.RWMutex
	index *vector.Index
}

// New assembles a store. Call Initialize to pick up a previously saved index.
func New(embedder embedding.Embedder, chunks *storage.ChunkStore, keywords *keyword.Index,
	generator llm.Generator, indexPath, vectorDir string, log *zap.Logger) *Store {
	return &Store{
		embedder:  embedder,
		chunks:    chunks,
		keywords:  keywords,
		generator: generator,
		indexPath: indexPath,
		vectorDir: vectorDir,
		log:       log,
	}
}

// Initialize loads the saved vector index if one exists. A missing or
// unreadable index is not an error; the store simply starts uninitialized
// and serves queries only after the next rebuild.
func (s *Store) Initialize(_ context.Context) {
	if _, err := os.Stat(s.indexPath); err != nil {
		s.log.Info("no saved vector index, store starts uninitialized",
			zap.String("path", s.indexPath))
		return
	}
	idx, err := vector.LoadIndex(s.indexPath)
	if err != nil {
		s.log.Warn("could not load saved vector index, store starts uninitialized",
			zap.String("path", s.indexPath),
			zap.Error(err))
		return
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	s.log.Info("vector index loaded",
		zap.Int("vectors", idx.Size()),
		zap.Int("dimensions", idx.Dimensions()))
}

// Initialized reports whether an index is available for querying.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Rebuild replaces the entire index with the given chunk texts. The new
// vector index is built in full before anything visible changes; a failure
// at any step leaves the previous index serving queries.
func (s *Store) Rebuild(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	next, err := vector.NewIndex(s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	ids := make([]string, len(texts))
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		ids[i] = fmt.Sprintf("chunk-%d", i)
		chunks[i] = models.Chunk{ID: ids[i], Content: text}
	}
	if err := next.Add(ids, vectors); err != nil {
		return fmt.Errorf("fill index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.chunks.ReplaceAll(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	if err := s.keywords.Rebuild(ctx, chunks); err != nil {
		return fmt.Errorf("rebuild keyword index: %w", err)
	}
	if err := next.Save(s.indexPath); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	s.index = next

	s.log.Info("vector store rebuilt", zap.Int("chunks", len(texts)))
	return nil
}

// Query retrieves the top-k chunks for the question and asks the generator
// for an answer grounded in them.
func (s *Store) Query(ctx context.Context, query string, k int) (string, error) {
	results, err := s.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	prompt := fmt.Sprintf(answerPromptFormat, strings.Join(contents, "\n"), query)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// Search returns the top-k chunks by embedding similarity.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()
	if idx == nil {
		return nil, ErrNotInitialized
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := idx.Search(qvec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return s.resolve(ctx, hitIDs(hits), hitScores(hits))
}

// SearchKeyword returns the top-k chunks by full-text match. It works even
// before the vector index is initialized since it only needs the keyword
// index and the chunk store.
func (s *Store) SearchKeyword(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	hits, err := s.keywords.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(hits))
	scores := make([]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		scores[i] = h.Score
	}
	return s.resolve(ctx, ids, scores)
}

// resolve maps hit IDs back to chunk content, preserving hit order.
func (s *Store) resolve(ctx context.Context, ids []string, scores []float64) ([]models.SearchResult, error) {
	byID, err := s.chunks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	results := make([]models.SearchResult, 0, len(ids))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok {
			s.log.Warn("index hit has no stored chunk", zap.String("id", id))
			continue
		}
		score := scores[i]
		results = append(results, models.SearchResult{
			Content:  c.Content,
			Metadata: c.Metadata,
			Score:    &score,
		})
	}
	return results, nil
}

// Stats reports chunk count, on-disk size, and the time of the last rebuild.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	count, err := s.chunks.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	size, err := storage.DiskUsageBytes(s.vectorDir)
	if err != nil {
		return Stats{}, fmt.Errorf("measure store size: %w", err)
	}
	updated, err := s.chunks.LastUpdated(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalChunks: count, SizeBytes: size, LastUpdated: updated}, nil
}

// Close releases the chunk store, the keyword index, and the embedder.
func (s *Store) Close() error {
	var firstErr error
	if err := s.chunks.Close(); err != nil {
		firstErr = err
	}
	if err := s.keywords.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func hitIDs(hits []vector.Result) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func hitScores(hits []vector.Result) []float64 {
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.Score
	}
	return out
}
