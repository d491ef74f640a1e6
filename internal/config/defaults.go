package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.Vector.URL == "" {
		cfg.Vector.URL = "http://localhost:6333"
	}
	if cfg.Vector.TimeoutSecs == 0 {
		cfg.Vector.TimeoutSecs = 15
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.Feedback.TimeoutSecs == 0 {
		cfg.Feedback.TimeoutSecs = 5
	}
	if cfg.Blogs == nil {
		cfg.Blogs = map[string]BlogConfig{
			"blog-v2":    {Name: "IT Blog"},
			"investment": {Name: "Investment Blog"},
		}
	}
}
