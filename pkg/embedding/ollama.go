package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

type OllamaConfig struct {
	Model     string
	BaseURL   string // Ollama server URL
	Dimension int
}

// Ollama embeds text with a real model served by Ollama. It shares
// the Embedder contract with Deterministic: callers only rely on
// "same text in, same vector out" and the fixed dimension.
type Ollama struct {
	config OllamaConfig
	llm    *ollama.LLM
}

func NewOllamaWithConfig(config OllamaConfig) (*Ollama, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Dimension == 0 {
		config.Dimension = 768 // nomic-embed-text output width
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	return &Ollama{config: config, llm: llm}, nil
}

func (e *Ollama) Dimension() int { return e.config.Dimension }

func (e *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding model returned no vectors")
	}
	if len(vecs[0]) != e.config.Dimension {
		return nil, fmt.Errorf("embedding model returned dimension %d, expected %d",
			len(vecs[0]), e.config.Dimension)
	}
	return vecs[0], nil
}
