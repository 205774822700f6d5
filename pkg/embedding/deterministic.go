package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// DefaultDimension matches the output width of the sentence-transformer
// models this placeholder stands in for.
const DefaultDimension = 384

// seedVersion is baked into the seed derivation. Bump it if the
// mapping from text to vector ever has to change; stored embeddings
// from older versions are then re-embedded rather than compared.
const seedVersion = "v1"

// Deterministic maps text to a fixed-dimension vector of pseudo-random
// normal samples seeded by a stable hash of the text. The same text
// always yields the same vector, across processes and restarts; it has
// no semantic quality and exists so the retrieval path can run without
// a model backend.
type Deterministic struct {
	dim int
}

func NewDeterministic(dim int) Deterministic {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return Deterministic{dim: dim}
}

func (e Deterministic) Dimension() int { return e.dim }

func (e Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(seedVersion + ":" + text))
	seed := int64(binary.LittleEndian.Uint64(sum[:8]))

	rng := rand.New(rand.NewSource(seed))
	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	return vec, nil
}
