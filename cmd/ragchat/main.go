// Package main is the ragchat CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/advenoh/ragchat/internal/analytics"
	"github.com/advenoh/ragchat/internal/config"
	"github.com/advenoh/ragchat/internal/embedding"
	"github.com/advenoh/ragchat/internal/eval"
	"github.com/advenoh/ragchat/internal/feedback"
	"github.com/advenoh/ragchat/internal/indexer"
	"github.com/advenoh/ragchat/internal/llm"
	"github.com/advenoh/ragchat/internal/rag"
	"github.com/advenoh/ragchat/internal/server"
	"github.com/advenoh/ragchat/internal/vector"
	"github.com/advenoh/ragchat/internal/watcher"
	"github.com/advenoh/ragchat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "index":
		runIndex()
	case "evaluate":
		runEvaluate()
	case "version", "--version", "-v":
		fmt.Printf("ragchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		roots := make(map[string]string, len(cfg.Blogs))
		for blogID, blog := range cfg.Blogs {
			roots[blogID] = blog.ContentsDir
		}
		idx := components.Indexer
		watchSvc := watcher.NewWatcher(roots, func(blogID string) {
			dir := cfg.Blogs[blogID].ContentsDir
			if count, err := idx.Reindex(context.Background(), blogID, dir); err != nil {
				logger.Warn("Watch reindex failed", zap.String("blog_id", blogID), zap.Error(err))
			} else {
				logger.Info("Watch reindex done", zap.String("blog_id", blogID), zap.Int("chunks", count))
			}
		}, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		cfg,
		components.Indexer,
		components.LLM,
		components.Retrievers,
		components.Analytics,
		components.Forwarder,
		logger,
	)
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

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	blogID := fs.String("blog-id", "blog-v2", "blog to reindex")
	contentsDir := fs.String("contents-dir", "", "content root (default: from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, false)
	defer logger.Sync()

	if !cfg.KnownBlog(*blogID) {
		fmt.Printf("Unknown blog_id: %s\n", *blogID)
		os.Exit(1)
	}
	dir := *contentsDir
	if dir == "" {
		dir = cfg.Blogs[*blogID].ContentsDir
	}
	if dir == "" {
		fmt.Printf("No contents directory configured for: %s\n", *blogID)
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	count, err := components.Indexer.Reindex(context.Background(), *blogID, dir)
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d chunk(s) for %s\n", count, *blogID)
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	blogID := fs.String("blog-id", "blog-v2", "blog to evaluate against")
	output := fs.String("output", "", "write scores as JSON to this path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, false)
	defer logger.Sync()

	items := eval.ItemsForBlog(eval.Dataset, *blogID)
	if len(items) == 0 {
		fmt.Printf("No evaluation items for blog_id: %s\n", *blogID)
		return
	}
	fmt.Printf("Evaluating %d question(s) against %s\n", len(items), *blogID)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	chain := rag.NewChain(components.LLM, components.Retrievers(*blogID), cfg.RAG.TopK)
	samples, err := eval.CollectSamples(ctx, chain, items)
	if err != nil {
		fmt.Printf("Answer collection failed: %v\n", err)
		os.Exit(1)
	}

	scores, err := eval.NewEvaluator(components.LLM).Evaluate(ctx, samples)
	if err != nil {
		fmt.Printf("Evaluation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n=== Evaluation results ===")
	fmt.Printf("  faithfulness:      %.4f\n", scores.Faithfulness)
	fmt.Printf("  answer_relevancy:  %.4f\n", scores.AnswerRelevancy)
	fmt.Printf("  context_precision: %.4f\n", scores.ContextPrecision)

	if *output != "" {
		data, err := json.MarshalIndent(scores, "", "  ")
		if err != nil {
			fmt.Printf("Failed to encode scores: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			fmt.Printf("Failed to write %s: %v\n", *output, err)
			os.Exit(1)
		}
		fmt.Printf("\nScores written to %s\n", *output)
	}
}

func mustSetup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

// Components holds initialized services.
type Components struct {
	Embedder   embedding.Embedder
	Store      vector.Store
	LLM        llm.Client
	Indexer    *indexer.Indexer
	Retrievers server.RetrieverFactory
	Analytics  analytics.Repository
	Forwarder  *feedback.Forwarder
}

func (c *Components) Close() {
	if c.Analytics != nil {
		_ = c.Analytics.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	var embedder embedding.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.EmbeddingModel,
			Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
	} else {
		// Keeps local runs working without a provider key.
		logger.Warn("OPENAI_API_KEY not set, using mock embeddings")
		embedder = embedding.NewMockEmbedder(1536)
	}

	var client llm.Client
	if cfg.OpenAI.APIKey != "" {
		client = llm.NewOpenAIClient(llm.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, answers will be empty")
		client = &llm.MockClient{}
	}

	store := vector.NewQdrantStore(vector.QdrantConfig{
		URL:     cfg.Vector.URL,
		APIKey:  cfg.Vector.APIKey,
		Timeout: time.Duration(cfg.Vector.TimeoutSecs) * time.Second,
	})

	var repo analytics.Repository
	if cfg.Analytics.DatabasePath != "" {
		sqlRepo, err := analytics.NewSQLiteRepository(cfg.Analytics.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open analytics store: %w", err)
		}
		repo = sqlRepo
	} else {
		logger.Info("Analytics database not configured, query logging disabled")
	}

	return &Components{
		Embedder: embedder,
		Store:    store,
		LLM:      client,
		Indexer:  indexer.NewIndexer(embedder, store, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, logger),
		Retrievers: func(blogID string) rag.Retriever {
			return rag.NewVectorRetriever(embedder, store, blogID)
		},
		Analytics: repo,
		Forwarder: feedback.NewForwarder(cfg.Feedback.WebhookURL, time.Duration(cfg.Feedback.TimeoutSecs)*time.Second),
	}, nil
}

func printUsage() {
	fmt.Println(`ragchat - RAG question answering over personal blogs

Usage:
  ragchat server [flags]     Start the HTTP API server
  ragchat index [flags]      Rebuild one blog's vector collection
  ragchat evaluate [flags]   Score answer quality over the built-in dataset
  ragchat version            Show version
  ragchat help               Show this help

Server Flags:
  --config string   Config file path (default: config.yaml)
  --debug           Enable debug logging

Index Flags:
  --config string        Config file path
  --blog-id string       Blog to reindex (default: blog-v2)
  --contents-dir string  Content root (default: from config)

Evaluate Flags:
  --config string   Config file path
  --blog-id string  Blog to evaluate against (default: blog-v2)
  --output string   Write scores as JSON to this path

Examples:
  ragchat server
  ragchat index --blog-id blog-v2 --contents-dir ~/blog/contents
  ragchat evaluate --blog-id blog-v2 --output scores.json`)
}
