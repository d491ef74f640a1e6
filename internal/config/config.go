// Package config provides configuration loading and structs for the ragchat server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                  `yaml:"debug"`
	Server    ServerConfig          `yaml:"server"`
	OpenAI    OpenAIConfig          `yaml:"openai"`
	Vector    VectorConfig          `yaml:"vector"`
	RAG       RAGConfig             `yaml:"rag"`
	Blogs     map[string]BlogConfig `yaml:"blogs"`
	Analytics AnalyticsConfig       `yaml:"analytics"`
	Feedback  FeedbackConfig        `yaml:"feedback"`
	Watch     WatchConfig           `yaml:"watch"`
	// IndexToken is the bearer secret for POST /index/{blog_id}. Usually set
	// via the RAG_INDEX_TOKEN environment variable rather than the file.
	IndexToken string `yaml:"index_token"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// OpenAIConfig holds settings for the completion/embedding provider.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// VectorConfig holds connection settings for the vector database.
type VectorConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RAGConfig holds chunking and retrieval settings.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
	// UseHybridSearch is parsed but the serving chain currently wires the
	// vector retriever only; see internal/rag.NewHybridRetriever.
	UseHybridSearch bool `yaml:"use_hybrid_search"`
}

// BlogConfig describes one recognized blog.
type BlogConfig struct {
	Name        string `yaml:"name"`
	ContentsDir string `yaml:"contents_dir"`
}

// AnalyticsConfig holds the query-log store settings. An empty DatabasePath
// disables persistence and the admin dashboard.
type AnalyticsConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// FeedbackConfig holds the external feedback-tracking webhook settings.
type FeedbackConfig struct {
	WebhookURL  string `yaml:"webhook_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// WatchConfig controls automatic reindexing of changed content trees.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the config file at path, applies defaults, and then
// environment overrides. A missing file is not an error: defaults plus
// environment are used. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnv(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Analytics.DatabasePath != "" {
		cfg.Analytics.DatabasePath = expandPath(cfg.Analytics.DatabasePath, configDir)
	}
	for id, blog := range cfg.Blogs {
		if blog.ContentsDir != "" {
			blog.ContentsDir = expandPath(blog.ContentsDir, configDir)
			cfg.Blogs[id] = blog
		}
	}

	return &cfg, nil
}

// applyEnv overrides secrets and endpoints from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("RAG_INDEX_TOKEN"); v != "" {
		cfg.IndexToken = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.Vector.URL = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Vector.APIKey = v
	}
	if v := os.Getenv("ANALYTICS_DB_PATH"); v != "" {
		cfg.Analytics.DatabasePath = v
	}
	if v := os.Getenv("FEEDBACK_WEBHOOK_URL"); v != "" {
		cfg.Feedback.WebhookURL = v
	}
}

// KnownBlog reports whether id is a configured blog identifier.
func (c *Config) KnownBlog(id string) bool {
	_, ok := c.Blogs[id]
	return ok
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
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
