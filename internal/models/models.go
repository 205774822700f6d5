package models

import "time"

// User is a tenant: the owner of a set of documents and fragments.
// Nothing belonging to one user is ever visible to another.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Document records one uploaded source file.
type Document struct {
	ID         int64
	TenantID   int64
	Filename   string
	UploadedAt time.Time
}

// Fragment is one chunk of a document's text together with its
// embedding vector. The tenant id is denormalized from the owning
// document so retrieval can filter on it directly.
type Fragment struct {
	ID         int64
	TenantID   int64
	DocumentID int64
	Text       string
	Embedding  []float32
}

// FragmentInput is a fragment before the store has assigned it an id.
type FragmentInput struct {
	Text      string
	Embedding []float32
}

// RetrievedFragment is a fragment returned by a similarity search,
// annotated with its distance to the query embedding.
type RetrievedFragment struct {
	Text       string
	DocumentID int64
	Distance   float64
}
