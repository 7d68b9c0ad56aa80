package embedding

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/querio/querio/internal/config"
)

// New builds the embedder selected by cfg.Provider, wrapped in an LRU cache.
// When a real provider cannot be constructed the deterministic mock is used
// instead, so the service always starts.
func New(cfg config.EmbeddingConfig, log *zap.Logger) Embedder {
	var inner Embedder
	switch cfg.Provider {
	case "onnx":
		onnx, err := NewONNX(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			log.Warn("onnx embedder unavailable, using mock embedder",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err))
			inner = NewMock(cfg.Dimensions)
		} else {
			inner = onnx
		}
	case "openai":
		remote, err := NewOpenAI(cfg.BaseURL, os.Getenv(cfg.APIKeyEnv), cfg.Model, cfg.Dimensions, 30*time.Second)
		if err != nil {
			log.Warn("remote embedder unavailable, using mock embedder",
				zap.String("base_url", cfg.BaseURL),
				zap.Error(err))
			inner = NewMock(cfg.Dimensions)
		} else {
			inner = remote
		}
	default:
		inner = NewMock(cfg.Dimensions)
	}
	return WithCache(inner, cfg.CacheSize)
}
