package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"ragd/internal/models"
)

// ModelConfig represents the configuration for a model-backed synthesizer.
type ModelConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
	BaseURL         string // Ollama server URL
}

// ModelBacked hands the question and the retrieved fragments to a
// generative model. Only the fragments and the question reach the
// prompt; the model is asked to answer from that context alone.
type ModelBacked struct {
	config ModelConfig
	llm    llms.Model
}

func NewModelBackedWithConfig(config ModelConfig) (*ModelBacked, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.Temperature <= 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant with access to excerpts from the user's own documents. Answer questions using only this context."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "Relevant excerpts:\n%s\nQuestion: %s"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ModelBacked{config: config, llm: llm}, nil
}

func (m *ModelBacked) Synthesize(ctx context.Context, question string, fragments []models.RetrievedFragment) (string, error) {
	if len(fragments) == 0 {
		return NoDocumentsMessage, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, m.config.SystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf(m.config.ContextTemplate, m.formatContext(fragments), question)),
	}

	response, err := m.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(m.config.MaxTokens),
		llms.WithTemperature(m.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("synthesis error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return response.Choices[0].Content, nil
}

// SynthesizeStream generates the answer on a channel, one chunk per
// model choice.
func (m *ModelBacked) SynthesizeStream(ctx context.Context, question string, fragments []models.RetrievedFragment) (<-chan string, error) {
	if len(fragments) == 0 {
		out := make(chan string, 1)
		out <- NoDocumentsMessage
		close(out)
		return out, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, m.config.SystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf(m.config.ContextTemplate, m.formatContext(fragments), question)),
	}

	resultChan := make(chan string)

	go func() {
		defer close(resultChan)

		response, err := m.llm.GenerateContent(ctx, content,
			llms.WithMaxTokens(m.config.MaxTokens),
			llms.WithTemperature(m.config.Temperature))
		if err != nil {
			resultChan <- fmt.Sprintf("Error: %v", err)
			return
		}
		if response == nil {
			resultChan <- "Error: no response from model"
			return
		}

		for _, choice := range response.Choices {
			if choice != nil && choice.Content != "" {
				resultChan <- choice.Content
			}
		}
	}()

	return resultChan, nil
}

func (m *ModelBacked) formatContext(fragments []models.RetrievedFragment) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
