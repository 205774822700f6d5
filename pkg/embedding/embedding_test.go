package embedding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragd/pkg/embedding"
)

func TestDeterministicEmbedding(t *testing.T) {
	emb := embedding.NewDeterministic(384)
	ctx := context.Background()

	first, err := emb.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	second, err := emb.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEmbeddingDimension(t *testing.T) {
	ctx := context.Background()

	for _, dim := range []int{8, 384, 768} {
		emb := embedding.NewDeterministic(dim)
		assert.Equal(t, dim, emb.Dimension())

		for _, text := range []string{"", "a", "some longer piece of text"} {
			vec, err := emb.Embed(ctx, text)
			require.NoError(t, err)
			assert.Len(t, vec, dim)
		}
	}
}

func TestDifferentTextsDiffer(t *testing.T) {
	emb := embedding.NewDeterministic(384)
	ctx := context.Background()

	a, err := emb.Embed(ctx, "retrieval augmented generation")
	require.NoError(t, err)
	b, err := emb.Embed(ctx, "completely unrelated sentence")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDefaultDimension(t *testing.T) {
	emb := embedding.NewDeterministic(0)
	assert.Equal(t, embedding.DefaultDimension, emb.Dimension())
}
