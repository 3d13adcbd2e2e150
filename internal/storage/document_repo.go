package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks realty-assistant/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Insert stores a new document. ID and CreatedAt are filled in when empty.
	// Returns ErrDuplicate if a document with the same hash exists.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document including its text. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// GetByHash gets a document by content hash. Returns ErrNotFound if not found.
	GetByHash(ctx context.Context, hash string) (*DocumentRecord, error)
	// List returns all documents, newest first, without their text.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// Delete removes a document together with its chunks and conversation turns.
	// Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert stores a new document. ID and CreatedAt are filled in when empty.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, format, title, pages, size_bytes, hash, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Format, doc.Title, doc.Pages, doc.SizeBytes, doc.Hash, doc.Text, formatTime(doc.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: document with hash %s", ErrDuplicate, doc.Hash)
	}
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document including its text. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, format, title, pages, size_bytes, hash, text, created_at FROM documents WHERE id = ?",
		id,
	)
	return scanDocument(row)
}

// GetByHash gets a document by content hash. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByHash(ctx context.Context, hash string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, format, title, pages, size_bytes, hash, text, created_at FROM documents WHERE hash = ?",
		hash,
	)
	return scanDocument(row)
}

// List returns all documents, newest first, without their text.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, format, title, pages, size_bytes, hash, '', created_at FROM documents ORDER BY created_at DESC, name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []*DocumentRecord{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete removes a document together with its chunks and conversation turns.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var createdAt string

	err := row.Scan(&doc.ID, &doc.Name, &doc.Format, &doc.Title, &doc.Pages, &doc.SizeBytes, &doc.Hash, &doc.Text, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &doc, nil
}
