package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"

	"ragd/internal/models"
	"ragd/internal/types"
)

type RetrieverConfig struct {
	Metric string // euclidean or cosine
}

// Retriever ranks a tenant's fragments by distance to the query
// embedding with an exact linear scan. Fragments arrive from the
// store in insertion order, and the sort is stable, so equal
// distances resolve to the earlier insertion.
type Retriever struct {
	embedder types.Embedder
	store    types.FragmentStore
	distance func(a, b []float32) float64
}

func NewWithConfig(embedder types.Embedder, store types.FragmentStore, config RetrieverConfig) (*Retriever, error) {
	if config.Metric == "" {
		config.Metric = "euclidean"
	}

	var distance func(a, b []float32) float64
	switch config.Metric {
	case "euclidean":
		distance = euclidean
	case "cosine":
		distance = cosine
	default:
		return nil, fmt.Errorf("%w: unknown distance metric %q", types.ErrInvalidConfiguration, config.Metric)
	}

	return &Retriever{
		embedder: embedder,
		store:    store,
		distance: distance,
	}, nil
}

// Retrieve returns the topK fragments nearest to the query for the
// given tenant, most relevant first. An empty corpus yields an empty
// result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, tenantID int64, topK int) ([]models.RetrievedFragment, error) {
	if topK <= 0 {
		return nil, nil
	}

	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	frags, err := r.store.ListFragmentsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, nil
	}

	scored := make([]models.RetrievedFragment, 0, len(frags))
	for _, f := range frags {
		if len(f.Embedding) != len(q) {
			return nil, fmt.Errorf("%w: fragment %d has embedding dimension %d, query has %d",
				types.ErrInvalidInput, f.ID, len(f.Embedding), len(q))
		}
		scored = append(scored, models.RetrievedFragment{
			Text:       f.Text,
			DocumentID: f.DocumentID,
			Distance:   r.distance(f.Embedding, q),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// cosine returns 1 - cosine similarity so that smaller is nearer,
// matching the euclidean ordering convention. A zero vector has no
// direction and is treated as maximally distant.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
