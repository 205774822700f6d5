package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
server:
  addr: ":9000"
  jwt_secret: "test-secret"
  rate_limit: 10

database:
  driver: "sqlite"
  path: "test.db"

embedding:
  provider: "mock"
  dimension: 384

chunker:
  chunk_size: 500
  chunk_overlap: 100

retriever:
  top_k: 3
  metric: "cosine"

synthesizer:
  mode: "template"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, "test-secret", config.Server.JWTSecret)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "test.db", config.Database.Path)
	assert.Equal(t, 384, config.Embedding.Dimension)
	assert.Equal(t, 500, config.Chunker.ChunkSize)
	assert.Equal(t, 3, config.Retriever.TopK)
	assert.Equal(t, "cosine", config.Retriever.Metric)
	assert.Equal(t, "template", config.Synthesizer.Mode)

	// Defaults fill in everything the file left out.
	assert.Equal(t, "mistral", config.Synthesizer.Model)
	assert.Equal(t, 2000, config.Synthesizer.MaxTokens)
}

func TestDefaults(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Equal(t, ":8000", config.Server.Addr)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "mock", config.Embedding.Provider)
	assert.Equal(t, 384, config.Embedding.Dimension)
	assert.Equal(t, 500, config.Chunker.ChunkSize)
	assert.Equal(t, 100, config.Chunker.ChunkOverlap)
	assert.Equal(t, 2, config.Retriever.TopK)
	assert.Equal(t, "euclidean", config.Retriever.Metric)
	assert.Equal(t, "template", config.Synthesizer.Mode)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		expectedErrs int
		fields       []string
	}{
		{
			name:         "valid defaults",
			mutate:       func(c *Config) {},
			expectedErrs: 0,
		},
		{
			name: "overlap at chunk size",
			mutate: func(c *Config) {
				c.Chunker.ChunkSize = 100
				c.Chunker.ChunkOverlap = 100
			},
			expectedErrs: 1,
			fields:       []string{"chunker.chunk_overlap"},
		},
		{
			name: "unknown metric and mode",
			mutate: func(c *Config) {
				c.Retriever.Metric = "manhattan"
				c.Synthesizer.Mode = "oracle"
			},
			expectedErrs: 2,
			fields:       []string{"retriever.metric", "synthesizer.mode"},
		},
		{
			name: "postgres without url",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.URL = ""
			},
			expectedErrs: 1,
			fields:       []string{"database.url"},
		},
		{
			name: "bad dimension and temperature",
			mutate: func(c *Config) {
				c.Embedding.Dimension = -1
				c.Synthesizer.Temperature = 3.0
			},
			expectedErrs: 2,
			fields:       []string{"embedding.dimension", "synthesizer.temperature"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			applyDefaults(config)
			tt.mutate(config)

			errors := config.Validate()
			assert.Len(t, errors, tt.expectedErrs)
			for i, field := range tt.fields {
				assert.Equal(t, field, errors[i].Field)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	os.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	os.Setenv("RAGD_JWT_SECRET", "env-secret")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("OLLAMA_BASE_URL")
		os.Unsetenv("RAGD_JWT_SECRET")
	}()

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "postgres://env-db:5432/test", config.Database.URL)
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "http://env-ollama:11434", config.Embedding.BaseURL)
	assert.Equal(t, "http://env-ollama:11434", config.Synthesizer.BaseURL)
	assert.Equal(t, "env-secret", config.Server.JWTSecret)
}
