package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/querio/querio/internal/chat"
	"github.com/querio/querio/internal/chunker"
	"github.com/querio/querio/internal/config"
	"github.com/querio/querio/internal/documents"
	"github.com/querio/querio/internal/embedding"
	"github.com/querio/querio/internal/extract"
	"github.com/querio/querio/internal/keyword"
	"github.com/querio/querio/internal/llm"
	"github.com/querio/querio/internal/server"
	"github.com/querio/querio/internal/storage"
	"github.com/querio/querio/internal/vectorstore"
	"github.com/querio/querio/internal/watcher"
	"github.com/querio/querio/pkg/utils"
)

const defaultConfigPath = "/usr/local/etc/querio/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project's config. Returns the config and the path actually used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("querio version %s\n", server.Version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	// API keys live in the environment; a .env file is a convenience for
	// development and may be absent.
	_ = godotenv.Load()

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	components.Store.Initialize(context.Background())

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		w := watcher.New(cfg.Storage.PDFDir,
			components.Docs.Register,
			components.Docs.Unregister,
			logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Docs, components.Sessions, components.Store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// Components holds the initialized services.
type Components struct {
	Docs     *documents.Registry
	Sessions *chat.Registry
	Store    *vectorstore.Store
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	source := extract.NewPDF()
	splitter := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)

	docs, err := documents.NewRegistry(cfg.Storage.PDFDir, source, splitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document registry: %w", err)
	}

	chunkStore, err := storage.NewChunkStore(cfg.ChunkDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunk store: %w", err)
	}
	keywordIndex, err := keyword.New(cfg.KeywordIndexPath())
	if err != nil {
		_ = chunkStore.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	embedder := embedding.New(cfg.Embedding, logger)

	generator, err := llm.NewGemini(
		cfg.LLM.APIURL,
		cfg.LLM.APIKey(),
		cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		_ = chunkStore.Close()
		_ = keywordIndex.Close()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	store := vectorstore.New(embedder, chunkStore, keywordIndex, generator,
		cfg.VectorIndexPath(), cfg.Storage.VectorDir, logger)

	return &Components{
		Docs:     docs,
		Sessions: chat.NewRegistry(),
		Store:    store,
	}, nil
}

func printUsage() {
	fmt.Println(`querio - PDF question answering over a local vector store

Usage:
  querio server [flags]    Start the HTTP API server
  querio version           Show version
  querio help              Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/querio/config.yaml)
  --debug            Enable debug logging

Environment:
  GENAI_API_KEY      API key for answer generation (or the variable named
                     by llm.api_key_env in the config). A .env file in the
                     working directory is loaded if present.

Examples:
  querio server
  querio server --config ./config.yaml --debug`)
}
