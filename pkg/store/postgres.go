package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"ragd/internal/models"
	"ragd/internal/types"
)

type PostgresConfig struct {
	ConnString string
	VectorDim  int
}

// Postgres is the FragmentStore backend for shared deployments,
// keeping embeddings in a pgvector column. Fragment ids come from a
// BIGSERIAL, so ORDER BY id reproduces insertion order and the
// retriever's linear scan behaves identically to the other backends.
type Postgres struct {
	config PostgresConfig
	pool   *pgxpool.Pool
}

func NewPostgresWithConfig(ctx context.Context, config PostgresConfig) (*Postgres, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 384
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to database: %v", types.ErrStorageFailure, err)
	}

	s := &Postgres{config: config, pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) initialize(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			tenant_id BIGINT NOT NULL REFERENCES users(id),
			filename TEXT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fragments (
			id BIGSERIAL PRIMARY KEY,
			tenant_id BIGINT NOT NULL REFERENCES users(id),
			document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.config.VectorDim),
		`CREATE INDEX IF NOT EXISTS fragments_tenant_idx ON fragments(tenant_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: initialize schema: %v", types.ErrStorageFailure, err)
		}
	}
	return nil
}

func (s *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert user: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *Postgres) GetUserByName(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: user %q", types.ErrNotFound, username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: query user: %v", types.ErrStorageFailure, err)
	}
	return u, nil
}

func (s *Postgres) CreateDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO documents (tenant_id, filename, uploaded_at) VALUES ($1, $2, $3) RETURNING id`,
		tenantID, filename, uploadedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert document: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *Postgres) ListDocuments(ctx context.Context, tenantID int64) ([]models.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, uploaded_at FROM documents WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %v", types.ErrStorageFailure, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", types.ErrStorageFailure, err)
		}
		d.TenantID = tenantID
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %v", types.ErrStorageFailure, err)
	}
	return docs, nil
}

func (s *Postgres) DeleteDocument(ctx context.Context, tenantID, documentID int64) error {
	// Fragments go with the document via ON DELETE CASCADE.
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1 AND tenant_id = $2`, documentID, tenantID)
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", types.ErrStorageFailure, err)
	}
	return nil
}

func (s *Postgres) PutFragment(ctx context.Context, tenantID, documentID int64, text string, embedding []float32) (int64, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM documents WHERE id = $1 AND tenant_id = $2`, documentID, tenantID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: document %d for tenant %d", types.ErrNotFound, documentID, tenantID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: check document: %v", types.ErrStorageFailure, err)
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO fragments (tenant_id, document_id, content, embedding) VALUES ($1, $2, $3, $4) RETURNING id`,
		tenantID, documentID, text, pgvector.NewVector(embedding)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert fragment: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *Postgres) ListFragmentsByTenant(ctx context.Context, tenantID int64) ([]models.Fragment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, content, embedding FROM fragments WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: query fragments: %v", types.ErrStorageFailure, err)
	}
	defer rows.Close()

	var frags []models.Fragment
	for rows.Next() {
		var f models.Fragment
		var vec pgvector.Vector
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Text, &vec); err != nil {
			return nil, fmt.Errorf("%w: scan fragment: %v", types.ErrStorageFailure, err)
		}
		f.TenantID = tenantID
		f.Embedding = vec.Slice()
		frags = append(frags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate fragments: %v", types.ErrStorageFailure, err)
	}
	return frags, nil
}

func (s *Postgres) CountFragmentsByTenant(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fragments WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count fragments: %v", types.ErrStorageFailure, err)
	}
	return count, nil
}

func (s *Postgres) IngestDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time, fragments []models.FragmentInput) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %v", types.ErrStorageFailure, err)
	}
	defer tx.Rollback(ctx)

	var docID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO documents (tenant_id, filename, uploaded_at) VALUES ($1, $2, $3) RETURNING id`,
		tenantID, filename, uploadedAt).Scan(&docID)
	if err != nil {
		return 0, fmt.Errorf("%w: insert document: %v", types.ErrStorageFailure, err)
	}

	for _, f := range fragments {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fragments (tenant_id, document_id, content, embedding) VALUES ($1, $2, $3, $4)`,
			tenantID, docID, f.Text, pgvector.NewVector(f.Embedding)); err != nil {
			return 0, fmt.Errorf("%w: insert fragment: %v", types.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit ingestion: %v", types.ErrStorageFailure, err)
	}
	return docID, nil
}

func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
