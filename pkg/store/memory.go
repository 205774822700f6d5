package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ragd/internal/models"
	"ragd/internal/types"
)

// Memory is a mutex-guarded in-memory FragmentStore. It backs tests
// and the local CLI mode; nothing survives a restart.
type Memory struct {
	mu        sync.RWMutex
	users     []models.User
	documents []models.Document
	fragments []models.Fragment
	nextUser  int64
	nextDoc   int64
	nextFrag  int64
}

func NewMemory() *Memory {
	return &Memory{nextUser: 1, nextDoc: 1, nextFrag: 1}
}

func (m *Memory) CreateUser(_ context.Context, username, passwordHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return 0, fmt.Errorf("%w: username %q already exists", types.ErrStorageFailure, username)
		}
	}
	id := m.nextUser
	m.nextUser++
	m.users = append(m.users, models.User{ID: id, Username: username, PasswordHash: passwordHash})
	return id, nil
}

func (m *Memory) GetUserByName(_ context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("%w: user %q", types.ErrNotFound, username)
}

func (m *Memory) CreateDocument(_ context.Context, tenantID int64, filename string, uploadedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createDocumentLocked(tenantID, filename, uploadedAt), nil
}

func (m *Memory) createDocumentLocked(tenantID int64, filename string, uploadedAt time.Time) int64 {
	id := m.nextDoc
	m.nextDoc++
	m.documents = append(m.documents, models.Document{
		ID:         id,
		TenantID:   tenantID,
		Filename:   filename,
		UploadedAt: uploadedAt,
	})
	return id
}

func (m *Memory) ListDocuments(_ context.Context, tenantID int64) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []models.Document
	for _, d := range m.documents {
		if d.TenantID == tenantID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (m *Memory) DeleteDocument(_ context.Context, tenantID, documentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	docs := m.documents[:0]
	for _, d := range m.documents {
		if d.ID == documentID && d.TenantID == tenantID {
			found = true
			continue
		}
		docs = append(docs, d)
	}
	m.documents = docs
	if !found {
		return nil
	}

	frags := m.fragments[:0]
	for _, f := range m.fragments {
		if f.DocumentID == documentID {
			continue
		}
		frags = append(frags, f)
	}
	m.fragments = frags
	return nil
}

func (m *Memory) PutFragment(_ context.Context, tenantID, documentID int64, text string, embedding []float32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.documentOwnedLocked(tenantID, documentID) {
		return 0, fmt.Errorf("%w: document %d for tenant %d", types.ErrNotFound, documentID, tenantID)
	}
	return m.putFragmentLocked(tenantID, documentID, text, embedding), nil
}

func (m *Memory) putFragmentLocked(tenantID, documentID int64, text string, embedding []float32) int64 {
	id := m.nextFrag
	m.nextFrag++
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.fragments = append(m.fragments, models.Fragment{
		ID:         id,
		TenantID:   tenantID,
		DocumentID: documentID,
		Text:       text,
		Embedding:  vec,
	})
	return id
}

func (m *Memory) documentOwnedLocked(tenantID, documentID int64) bool {
	for _, d := range m.documents {
		if d.ID == documentID && d.TenantID == tenantID {
			return true
		}
	}
	return false
}

func (m *Memory) ListFragmentsByTenant(_ context.Context, tenantID int64) ([]models.Fragment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var frags []models.Fragment
	for _, f := range m.fragments {
		if f.TenantID == tenantID {
			frags = append(frags, f)
		}
	}
	return frags, nil
}

func (m *Memory) CountFragmentsByTenant(_ context.Context, tenantID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, f := range m.fragments {
		if f.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) IngestDocument(_ context.Context, tenantID int64, filename string, uploadedAt time.Time, fragments []models.FragmentInput) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docID := m.createDocumentLocked(tenantID, filename, uploadedAt)
	for _, f := range fragments {
		m.putFragmentLocked(tenantID, docID, f.Text, f.Embedding)
	}
	return docID, nil
}

func (m *Memory) Close() {}
