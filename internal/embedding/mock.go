package embedding

import (
	"context"
	"math"

	"github.com/querio/querio/pkg/utils"
)

// Mock is a deterministic embedder. The same text always maps to the same
// unit-length vector, so similarity between identical texts is maximal.
// It is the fallback provider when no real backend is configured.
type Mock struct {
	dimensions int
}

// NewMock returns a deterministic embedder of the given dimensionality.
func NewMock(dimensions int) *Mock {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Mock{dimensions: dimensions}
}

// Embed derives a vector from the text hash and normalizes it.
func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	h := hashString(text)
	vec := make([]float32, m.dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (m *Mock) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (m *Mock) Dimensions() int { return m.dimensions }

// Close is a no-op.
func (m *Mock) Close() error { return nil }
