package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Embedding struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
	} `yaml:"embedding"`

	Database struct {
		URL            string `yaml:"url"`
		DocumentsTable string `yaml:"documents_table"`
		ChunksTable    string `yaml:"chunks_table"`
		VectorDim      int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Retrieval struct {
		TopK          int    `yaml:"top_k"`
		MaxMatches    int    `yaml:"max_matches"`
		ContextTokens int    `yaml:"context_tokens"`
		Encoding      string `yaml:"encoding"`
	} `yaml:"retrieval"`

	Ingest struct {
		ChunkSize      int           `yaml:"chunk_size"`
		ChunkOverlap   int           `yaml:"chunk_overlap"`
		UpsertInterval time.Duration `yaml:"upsert_interval"`
		MaxDepth       int           `yaml:"max_depth"`
		RateLimit      float64       `yaml:"rate_limit"`
	} `yaml:"ingest"`

	Presenter struct {
		WindowWords int           `yaml:"window_words"`
		ChunkDelay  time.Duration `yaml:"chunk_delay"`
		HeaderDelay time.Duration `yaml:"header_delay"`
		WordDelay   time.Duration `yaml:"word_delay"`
		TextDelay   time.Duration `yaml:"text_delay"`
	} `yaml:"presenter"`

	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logging struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/buddy/config.yaml"),
			"/etc/buddy/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() *Config {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "openai"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 1024
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.3
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = config.LLM.Provider
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = config.LLM.BaseURL
	}
	if config.Embedding.Model == "" {
		if config.Embedding.Provider == "ollama" {
			config.Embedding.Model = "nomic-embed-text:latest"
		} else {
			config.Embedding.Model = "text-embedding-ada-002"
		}
	}

	if config.Database.DocumentsTable == "" {
		config.Database.DocumentsTable = "documents"
	}
	if config.Database.ChunksTable == "" {
		config.Database.ChunksTable = "document_chunks"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 1536
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 5
	}
	if config.Retrieval.MaxMatches == 0 {
		config.Retrieval.MaxMatches = 3
	}
	if config.Retrieval.ContextTokens == 0 {
		config.Retrieval.ContextTokens = 4000
	}
	if config.Retrieval.Encoding == "" {
		config.Retrieval.Encoding = "cl100k_base"
	}

	if config.Ingest.ChunkSize == 0 {
		config.Ingest.ChunkSize = 8000
	}
	if config.Ingest.UpsertInterval == 0 {
		config.Ingest.UpsertInterval = time.Second
	}
	if config.Ingest.MaxDepth == 0 {
		config.Ingest.MaxDepth = 1
	}
	if config.Ingest.RateLimit == 0 {
		config.Ingest.RateLimit = 2.0
	}

	if config.Presenter.WindowWords == 0 {
		config.Presenter.WindowWords = 5
	}
	if config.Presenter.ChunkDelay == 0 {
		config.Presenter.ChunkDelay = 100 * time.Millisecond
	}
	if config.Presenter.HeaderDelay == 0 {
		config.Presenter.HeaderDelay = 100 * time.Millisecond
	}
	if config.Presenter.WordDelay == 0 {
		config.Presenter.WordDelay = 20 * time.Millisecond
	}
	if config.Presenter.TextDelay == 0 {
		config.Presenter.TextDelay = 100 * time.Millisecond
	}

	if config.Cache.TTL == 0 {
		config.Cache.TTL = 24 * time.Hour
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}

	if config.Logging.Env == "" {
		config.Logging.Env = "dev"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("BUDDY_LLM_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	} else if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = baseURL
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = key
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Cache.RedisAddr = addr
	}
	if env := os.Getenv("BUDDY_ENV"); env != "" {
		config.Logging.Env = env
	}
}
