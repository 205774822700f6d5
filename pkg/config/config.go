package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	JWTSecret string  `yaml:"jwt_secret"`
	RateLimit float64 `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite or postgres
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres connection string
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // mock or ollama
	Dimension int    `yaml:"dimension"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

type RetrieverConfig struct {
	TopK   int    `yaml:"top_k"`
	Metric string `yaml:"metric"` // euclidean or cosine
}

type SynthesizerConfig struct {
	Mode        string  `yaml:"mode"` // template or model
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Streaming   bool    `yaml:"streaming"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/ragd/config.yaml"),
			"/etc/ragd/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Server.RateLimit == 0 {
		config.Server.RateLimit = 20
	}

	if config.Database.Driver == "" {
		config.Database.Driver = "sqlite"
	}
	if config.Database.Path == "" {
		config.Database.Path = "ragd.db"
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = "mock"
	}
	if config.Embedding.Dimension == 0 {
		config.Embedding.Dimension = 384
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "nomic-embed-text:latest"
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = "http://localhost:11434"
	}

	if config.Chunker.ChunkSize == 0 {
		config.Chunker.ChunkSize = 500
	}
	if config.Chunker.ChunkOverlap == 0 {
		config.Chunker.ChunkOverlap = 100
	}

	if config.Retriever.TopK == 0 {
		config.Retriever.TopK = 2
	}
	if config.Retriever.Metric == "" {
		config.Retriever.Metric = "euclidean"
	}

	if config.Synthesizer.Mode == "" {
		config.Synthesizer.Mode = "template"
	}
	if config.Synthesizer.Model == "" {
		config.Synthesizer.Model = "mistral"
	}
	if config.Synthesizer.BaseURL == "" {
		config.Synthesizer.BaseURL = "http://localhost:11434"
	}
	if config.Synthesizer.MaxTokens == 0 {
		config.Synthesizer.MaxTokens = 2000
	}
	if config.Synthesizer.Temperature == 0 {
		config.Synthesizer.Temperature = 0.7
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
		config.Database.Driver = "postgres"
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
		config.Synthesizer.BaseURL = baseURL
	}
	if secret := os.Getenv("RAGD_JWT_SECRET"); secret != "" {
		config.Server.JWTSecret = secret
	}
}
