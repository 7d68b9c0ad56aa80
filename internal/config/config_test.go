package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port: got %d, want 8000", cfg.Server.Port)
	}
	if cfg.Chunking.ChunkSize != 1000 || cfg.Chunking.ChunkOverlap != 100 {
		t.Errorf("chunking: got %d/%d, want 1000/100", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Embedding.Provider != "mock" {
		t.Errorf("embedding provider: got %q, want mock", cfg.Embedding.Provider)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("llm model: got %q", cfg.LLM.Model)
	}
}

func TestLoad_FileOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 9001
storage:
  pdf_dir: ./data
  vector_dir: /srv/querio/vector_db
chunking:
  chunk_size: 200
  chunk_overlap: 20
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if got, want := cfg.Storage.PDFDir, filepath.Join(dir, "data"); got != want {
		t.Errorf("pdf_dir: got %q, want %q", got, want)
	}
	if cfg.Storage.VectorDir != "/srv/querio/vector_db" {
		t.Errorf("vector_dir: got %q", cfg.Storage.VectorDir)
	}
	if cfg.ChunkDBPath() != "/srv/querio/vector_db/chunks.db" {
		t.Errorf("chunk db path: got %q", cfg.ChunkDBPath())
	}
	if cfg.Chunking.ChunkSize != 200 {
		t.Errorf("chunk_size: got %d", cfg.Chunking.ChunkSize)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLLMConfig_APIKey(t *testing.T) {
	t.Setenv("QUERIO_TEST_KEY", "secret")
	l := &LLMConfig{APIKeyEnv: "QUERIO_TEST_KEY"}
	if l.APIKey() != "secret" {
		t.Errorf("APIKey: got %q", l.APIKey())
	}
}
