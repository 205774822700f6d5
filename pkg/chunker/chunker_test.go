package chunker_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragd/internal/types"
	"ragd/pkg/chunker"
)

func TestChunkWindowing(t *testing.T) {
	c, err := chunker.NewWithConfig(chunker.ChunkerConfig{ChunkSize: 10, ChunkOverlap: 3})
	require.NoError(t, err)

	text := strings.Repeat("abcdefg", 5) // 35 runes
	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Every chunk except possibly the last has exactly ChunkSize runes.
	for _, ch := range chunks[:len(chunks)-1] {
		assert.Len(t, []rune(ch), 10)
	}
	assert.NotEmpty(t, chunks[len(chunks)-1])

	// Consecutive chunks overlap by exactly ChunkOverlap runes, so
	// dropping the overlap from each successor reconstructs the text.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		overlap := 3
		if len(cur) < overlap {
			overlap = len(cur)
		}
		assert.Equal(t, string(prev[len(prev)-overlap:]), string(cur[:overlap]))
		rebuilt.WriteString(string(cur[overlap:]))
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkDeterminism(t *testing.T) {
	c, err := chunker.NewWithConfig(chunker.ChunkerConfig{ChunkSize: 500, ChunkOverlap: 100})
	require.NoError(t, err)

	text := strings.Repeat("retrieval augmented generation ", 40)
	first, err := c.Chunk(text)
	require.NoError(t, err)
	second, err := c.Chunk(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChunkShortText(t *testing.T) {
	c, err := chunker.NewWithConfig(chunker.ChunkerConfig{ChunkSize: 500, ChunkOverlap: 100})
	require.NoError(t, err)

	text := "RAG stands for Retrieval-Augmented Generation. It combines search and LLMs."
	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkEmptyText(t *testing.T) {
	c, err := chunker.NewWithConfig(chunker.ChunkerConfig{})
	require.NoError(t, err)

	chunks, err := c.Chunk("")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkInvalidOverlap(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap above size", 100, 150},
		{"negative overlap", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chunker.NewWithConfig(chunker.ChunkerConfig{
				ChunkSize:    tt.size,
				ChunkOverlap: tt.overlap,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfiguration))
		})
	}
}
