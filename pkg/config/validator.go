package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	switch c.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown driver: %s", c.Database.Driver),
		})
	}

	if c.Database.Driver == "postgres" {
		if c.Database.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "postgres connection string is required",
			})
		} else if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "database.path",
			Message: "sqlite database path is required",
		})
	}

	switch c.Embedding.Provider {
	case "mock", "ollama":
	default:
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.Embedding.Provider),
		})
	}

	if c.Embedding.Dimension < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedding.dimension",
			Message: "dimension must be positive",
		})
	}

	if c.Chunker.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Retriever.TopK < 0 {
		errors = append(errors, ValidationError{
			Field:   "retriever.top_k",
			Message: "top_k must be non-negative",
		})
	}

	switch c.Retriever.Metric {
	case "euclidean", "cosine":
	default:
		errors = append(errors, ValidationError{
			Field:   "retriever.metric",
			Message: fmt.Sprintf("unknown metric: %s", c.Retriever.Metric),
		})
	}

	switch c.Synthesizer.Mode {
	case "template", "model":
	default:
		errors = append(errors, ValidationError{
			Field:   "synthesizer.mode",
			Message: fmt.Sprintf("unknown mode: %s", c.Synthesizer.Mode),
		})
	}

	if c.Synthesizer.Temperature < 0 || c.Synthesizer.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "synthesizer.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Synthesizer.MaxTokens < 1 || c.Synthesizer.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "synthesizer.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if _, err := url.Parse(c.Synthesizer.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "synthesizer.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	return errors
}
