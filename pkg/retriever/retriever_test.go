package retriever_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragd/internal/types"
	"ragd/pkg/embedding"
	"ragd/pkg/retriever"
	"ragd/pkg/store"
)

// planeEmbedder maps known texts to fixed 2D vectors so distances in
// tests are exact.
type planeEmbedder struct {
	vectors map[string][]float32
}

func (e planeEmbedder) Dimension() int { return 2 }

func (e planeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

func seedTenant(t *testing.T, s types.FragmentStore, username string, frags map[string][]float32, order []string) int64 {
	t.Helper()
	ctx := context.Background()

	tenant, err := s.CreateUser(ctx, username, "hash")
	require.NoError(t, err)
	docID, err := s.CreateDocument(ctx, tenant, username+".txt", time.Now())
	require.NoError(t, err)
	for _, text := range order {
		_, err := s.PutFragment(ctx, tenant, docID, text, frags[text])
		require.NoError(t, err)
	}
	return tenant
}

func TestRetrieveRanksByDistance(t *testing.T) {
	vectors := map[string][]float32{
		"near":    {1, 0},
		"nearer":  {2, 0},
		"nearest": {2.5, 0},
		"query":   {3, 0},
	}
	emb := planeEmbedder{vectors: vectors}
	s := store.NewMemory()
	tenant := seedTenant(t, s, "alice", vectors, []string{"near", "nearer", "nearest"})

	r, err := retriever.NewWithConfig(emb, s, retriever.RetrieverConfig{Metric: "euclidean"})
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "query", tenant, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "nearest", got[0].Text)
	assert.Equal(t, "nearer", got[1].Text)
	assert.InDelta(t, 0.5, got[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, got[1].Distance, 1e-9)
}

func TestRetrieveTieBreaksByInsertionOrder(t *testing.T) {
	// Both fragments sit at distance 1 from the query; the first
	// inserted must win.
	vectors := map[string][]float32{
		"left":  {-1, 0},
		"right": {1, 0},
		"query": {0, 0},
	}
	emb := planeEmbedder{vectors: vectors}
	s := store.NewMemory()
	tenant := seedTenant(t, s, "bob", vectors, []string{"left", "right"})

	r, err := retriever.NewWithConfig(emb, s, retriever.RetrieverConfig{})
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "query", tenant, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "left", got[0].Text)
}

func TestRetrieveTopKBound(t *testing.T) {
	vectors := map[string][]float32{
		"a": {1, 0}, "b": {2, 0}, "c": {3, 0},
		"query": {0, 0},
	}
	emb := planeEmbedder{vectors: vectors}
	s := store.NewMemory()
	tenant := seedTenant(t, s, "carol", vectors, []string{"a", "b", "c"})

	r, err := retriever.NewWithConfig(emb, s, retriever.RetrieverConfig{})
	require.NoError(t, err)

	for _, tc := range []struct{ topK, want int }{
		{0, 0}, {1, 1}, {3, 3}, {10, 3},
	} {
		got, err := r.Retrieve(context.Background(), "query", tenant, tc.topK)
		require.NoError(t, err)
		assert.Len(t, got, tc.want, "topK=%d", tc.topK)
	}
}

func TestRetrieveEmptyStore(t *testing.T) {
	s := store.NewMemory()
	tenant, err := s.CreateUser(context.Background(), "dave", "hash")
	require.NoError(t, err)

	r, err := retriever.NewWithConfig(embedding.NewDeterministic(8), s, retriever.RetrieverConfig{})
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "anything", tenant, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveTenantIsolation(t *testing.T) {
	emb := embedding.NewDeterministic(16)
	s := store.NewMemory()
	ctx := context.Background()

	ingest := func(username, text string) int64 {
		tenant, err := s.CreateUser(ctx, username, "hash")
		require.NoError(t, err)
		docID, err := s.CreateDocument(ctx, tenant, username+".txt", time.Now())
		require.NoError(t, err)
		vec, err := emb.Embed(ctx, text)
		require.NoError(t, err)
		_, err = s.PutFragment(ctx, tenant, docID, text, vec)
		require.NoError(t, err)
		return tenant
	}

	ingest("alice-iso", "alpha secret alpha")
	bob := ingest("bob-iso", "bravo data bravo")

	r, err := retriever.NewWithConfig(emb, s, retriever.RetrieverConfig{})
	require.NoError(t, err)

	// Even querying with Alice's exact text, Bob only ever sees his
	// own fragment.
	got, err := r.Retrieve(ctx, "alpha secret alpha", bob, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bravo data bravo", got[0].Text)
}

func TestRetrieveCosineMetric(t *testing.T) {
	// Cosine ignores magnitude: the long vector pointing along the
	// query direction beats the short orthogonal one.
	vectors := map[string][]float32{
		"aligned":    {10, 0},
		"orthogonal": {0, 0.1},
		"query":      {1, 0},
	}
	emb := planeEmbedder{vectors: vectors}
	s := store.NewMemory()
	tenant := seedTenant(t, s, "erin", vectors, []string{"orthogonal", "aligned"})

	r, err := retriever.NewWithConfig(emb, s, retriever.RetrieverConfig{Metric: "cosine"})
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "query", tenant, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "aligned", got[0].Text)
}

func TestRetrieveDimensionMismatch(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	tenant, err := s.CreateUser(ctx, "frank", "hash")
	require.NoError(t, err)
	docID, err := s.CreateDocument(ctx, tenant, "frank.txt", time.Now())
	require.NoError(t, err)
	_, err = s.PutFragment(ctx, tenant, docID, "wide", []float32{1, 2, 3, 4})
	require.NoError(t, err)

	r, err := retriever.NewWithConfig(planeEmbedder{vectors: map[string][]float32{}}, s, retriever.RetrieverConfig{})
	require.NoError(t, err)

	_, err = r.Retrieve(ctx, "query", tenant, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestUnknownMetricRejected(t *testing.T) {
	_, err := retriever.NewWithConfig(embedding.NewDeterministic(8), store.NewMemory(),
		retriever.RetrieverConfig{Metric: "manhattan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
}
