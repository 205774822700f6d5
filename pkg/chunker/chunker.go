package chunker

import (
	"fmt"

	"ragd/internal/types"
)

type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunker splits raw document text into overlapping fixed-size
// fragments with a sliding window. It is a pure function of the input
// text and the configured window.
type Chunker struct {
	config ChunkerConfig
}

func NewWithConfig(config ChunkerConfig) (Chunker, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = 500
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 100
	}
	if config.ChunkSize < 1 {
		return Chunker{}, fmt.Errorf("%w: chunk size must be positive, got %d",
			types.ErrInvalidConfiguration, config.ChunkSize)
	}
	// The window advances by size-overlap; a non-positive step would
	// never terminate.
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return Chunker{}, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)",
			types.ErrInvalidConfiguration, config.ChunkOverlap, config.ChunkSize)
	}

	return Chunker{config: config}, nil
}

// Chunk returns the text's fragments in left-to-right order. Each
// fragment except possibly the last is exactly ChunkSize runes long,
// and consecutive fragments share ChunkOverlap runes.
func (c Chunker) Chunk(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := c.config.ChunkSize - c.config.ChunkOverlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
