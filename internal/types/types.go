package types

import (
	"context"
	"time"

	"ragd/internal/models"
)

// Core interfaces
type Chunker interface {
	Chunk(text string) ([]string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// FragmentStore is the durable-storage collaborator. It is the only
// component with mutation rights over document and fragment rows, and
// every read is scoped to a tenant id.
type FragmentStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByName(ctx context.Context, username string) (models.User, error)

	CreateDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time) (int64, error)
	ListDocuments(ctx context.Context, tenantID int64) ([]models.Document, error)
	// DeleteDocument removes a document and its fragments in one unit.
	// Deleting a document that is absent or owned by another tenant is
	// a no-op.
	DeleteDocument(ctx context.Context, tenantID, documentID int64) error

	PutFragment(ctx context.Context, tenantID, documentID int64, text string, embedding []float32) (int64, error)
	ListFragmentsByTenant(ctx context.Context, tenantID int64) ([]models.Fragment, error)
	CountFragmentsByTenant(ctx context.Context, tenantID int64) (int, error)

	// IngestDocument writes the document record and all of its
	// fragments as one unit: either everything becomes visible or
	// nothing does.
	IngestDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time, fragments []models.FragmentInput) (int64, error)

	Close()
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, tenantID int64, topK int) ([]models.RetrievedFragment, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, question string, fragments []models.RetrievedFragment) (string, error)
}

// StreamSynthesizer is implemented by synthesizers that can deliver
// the answer incrementally.
type StreamSynthesizer interface {
	Synthesizer
	SynthesizeStream(ctx context.Context, question string, fragments []models.RetrievedFragment) (<-chan string, error)
}
