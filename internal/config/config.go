// Package config provides configuration loading and structs for the Querio server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the document folder and the vector database directory.
// The vector directory contains the chunk store (chunks.db), the vector index
// file (vectors.idx), and the keyword index (bleve/).
type StorageConfig struct {
	PDFDir    string `yaml:"pdf_dir"`
	VectorDir string `yaml:"vector_dir"`
}

// ChunkingConfig holds text splitting settings, in characters.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
// Provider is one of "onnx", "openai", or "mock".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
}

// LLMConfig configures the generative model used for answering queries.
// The API key is read from the environment variable named by APIKeyEnv.
type LLMConfig struct {
	Model          string `yaml:"model"`
	APIURL         string `yaml:"api_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKey returns the key from the configured environment variable.
func (l *LLMConfig) APIKey() string {
	return os.Getenv(l.APIKeyEnv)
}

// WatchConfig controls the PDF folder watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. A missing file is not an error: the defaults are returned so the
// service can run from environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		ApplyDefaults(&cfg)
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.PDFDir = expandPath(cfg.Storage.PDFDir, configDir)
	cfg.Storage.VectorDir = expandPath(cfg.Storage.VectorDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// ChunkDBPath returns the chunk store location inside the vector directory.
func (c *Config) ChunkDBPath() string {
	return filepath.Join(c.Storage.VectorDir, "chunks.db")
}

// VectorIndexPath returns the vector index file location.
func (c *Config) VectorIndexPath() string {
	return filepath.Join(c.Storage.VectorDir, "vectors.idx")
}

// KeywordIndexPath returns the keyword index directory.
func (c *Config) KeywordIndexPath() string {
	return filepath.Join(c.Storage.VectorDir, "bleve")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
