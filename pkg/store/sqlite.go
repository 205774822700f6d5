package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ragd/internal/models"
	"ragd/internal/types"
)

// SQLite is the default FragmentStore backend: a single-file database
// with embeddings stored as little-endian float32 blobs.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", types.ErrStorageFailure, err)
	}
	// modernc's driver is not safe for concurrent writes on one
	// connection pool entry; serialize at the pool.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id INTEGER NOT NULL REFERENCES users(id),
			filename TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id INTEGER NOT NULL REFERENCES users(id),
			document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS fragments_tenant_idx ON fragments(tenant_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: initialize schema: %v", types.ErrStorageFailure, err)
		}
	}
	return nil
}

func (s *SQLite) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("%w: insert user: %v", types.ErrStorageFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: user id: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *SQLite) GetUserByName(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: user %q", types.ErrNotFound, username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: query user: %v", types.ErrStorageFailure, err)
	}
	return u, nil
}

func (s *SQLite) CreateDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (tenant_id, filename, uploaded_at) VALUES (?, ?, ?)`,
		tenantID, filename, uploadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("%w: insert document: %v", types.ErrStorageFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: document id: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *SQLite) ListDocuments(ctx context.Context, tenantID int64) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, uploaded_at FROM documents WHERE tenant_id = ? ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %v", types.ErrStorageFailure, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		var uploaded string
		if err := rows.Scan(&d.ID, &d.Filename, &uploaded); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", types.ErrStorageFailure, err)
		}
		d.TenantID = tenantID
		if d.UploadedAt, err = time.Parse(time.RFC3339, uploaded); err != nil {
			return nil, fmt.Errorf("%w: parse upload time: %v", types.ErrStorageFailure, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %v", types.ErrStorageFailure, err)
	}
	return docs, nil
}

func (s *SQLite) DeleteDocument(ctx context.Context, tenantID, documentID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", types.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM fragments WHERE document_id = ? AND tenant_id = ?`, documentID, tenantID); err != nil {
		return fmt.Errorf("%w: delete fragments: %v", types.ErrStorageFailure, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND tenant_id = ?`, documentID, tenantID); err != nil {
		return fmt.Errorf("%w: delete document: %v", types.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %v", types.ErrStorageFailure, err)
	}
	return nil
}

func (s *SQLite) PutFragment(ctx context.Context, tenantID, documentID int64, text string, embedding []float32) (int64, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE id = ? AND tenant_id = ?`, documentID, tenantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: document %d for tenant %d", types.ErrNotFound, documentID, tenantID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: check document: %v", types.ErrStorageFailure, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fragments (tenant_id, document_id, content, embedding) VALUES (?, ?, ?, ?)`,
		tenantID, documentID, text, encodeVector(embedding))
	if err != nil {
		return 0, fmt.Errorf("%w: insert fragment: %v", types.ErrStorageFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: fragment id: %v", types.ErrStorageFailure, err)
	}
	return id, nil
}

func (s *SQLite) ListFragmentsByTenant(ctx context.Context, tenantID int64) ([]models.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, embedding FROM fragments WHERE tenant_id = ? ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: query fragments: %v", types.ErrStorageFailure, err)
	}
	defer rows.Close()

	var frags []models.Fragment
	for rows.Next() {
		var f models.Fragment
		var blob []byte
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Text, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan fragment: %v", types.ErrStorageFailure, err)
		}
		f.TenantID = tenantID
		if f.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("%w: decode embedding: %v", types.ErrStorageFailure, err)
		}
		frags = append(frags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate fragments: %v", types.ErrStorageFailure, err)
	}
	return frags, nil
}

func (s *SQLite) CountFragmentsByTenant(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fragments WHERE tenant_id = ?`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count fragments: %v", types.ErrStorageFailure, err)
	}
	return count, nil
}

func (s *SQLite) IngestDocument(ctx context.Context, tenantID int64, filename string, uploadedAt time.Time, fragments []models.FragmentInput) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %v", types.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (tenant_id, filename, uploaded_at) VALUES (?, ?, ?)`,
		tenantID, filename, uploadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("%w: insert document: %v", types.ErrStorageFailure, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: document id: %v", types.ErrStorageFailure, err)
	}

	for _, f := range fragments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fragments (tenant_id, document_id, content, embedding) VALUES (?, ?, ?, ?)`,
			tenantID, docID, f.Text, encodeVector(f.Embedding)); err != nil {
			return 0, fmt.Errorf("%w: insert fragment: %v", types.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit ingestion: %v", types.ErrStorageFailure, err)
	}
	return docID, nil
}

func (s *SQLite) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
