package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"knowledgehub/internal/domain"
)

// DocumentRepository handles document record persistence
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document record. Processed starts false and flips
// exactly once via MarkProcessed after all chunks are written.
func (r *DocumentRepository) Create(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO documents (id, title, file_name, file_path, mime_type, size_bytes,
			category, content_hash, processed, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.FileName, doc.FilePath, doc.MIMEType, doc.SizeBytes,
		string(doc.Category), doc.ContentHash, doc.Processed, doc.UploadedBy, doc.CreatedAt)

	return err
}

// Get retrieves a document by ID, returning nil when absent
func (r *DocumentRepository) Get(id string) (*domain.Document, error) {
	row := r.db.QueryRow(`
		SELECT id, title, file_name, file_path, mime_type, size_bytes,
			category, content_hash, processed, uploaded_by, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return doc, err
}

// FindDuplicate looks up an existing document whose content hash or file name
// matches the given values, classifying which predicate(s) matched the first
// hit. Returns nil when no document collides.
func (r *DocumentRepository) FindDuplicate(contentHash, fileName string) (*domain.DuplicateMatch, error) {
	var (
		match   domain.DuplicateMatch
		rowHash string
		rowName string
	)

	err := r.db.QueryRow(`
		SELECT id, title, file_path, content_hash, file_name
		FROM documents
		WHERE content_hash = ? OR file_name = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, contentHash, fileName).Scan(&match.ID, &match.Title, &match.FilePath, &rowHash, &rowName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	match.MatchType = classifyMatch(rowHash == contentHash, rowName == fileName)
	return &match, nil
}

func classifyMatch(hashMatched, nameMatched bool) domain.MatchType {
	switch {
	case hashMatched && nameMatched:
		return domain.MatchBoth
	case hashMatched:
		return domain.MatchHash
	default:
		return domain.MatchName
	}
}

// MarkProcessed flips the processed flag after all chunks are written
func (r *DocumentRepository) MarkProcessed(id string) error {
	result, err := r.db.Exec(`UPDATE documents SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a document record; its chunks go with it via cascade
func (r *DocumentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUploader retrieves the documents a user uploaded, newest first
func (r *DocumentRepository) ListByUploader(userID string) ([]*domain.Document, error) {
	return r.list(`
		SELECT id, title, file_name, file_path, mime_type, size_bytes,
			category, content_hash, processed, uploaded_by, created_at
		FROM documents WHERE uploaded_by = ? ORDER BY created_at DESC
	`, userID)
}

// ListAll retrieves every document, newest first
func (r *DocumentRepository) ListAll() ([]*domain.Document, error) {
	return r.list(`
		SELECT id, title, file_name, file_path, mime_type, size_bytes,
			category, content_hash, processed, uploaded_by, created_at
		FROM documents ORDER BY created_at DESC
	`)
}

// Count returns the total number of documents
func (r *DocumentRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

func (r *DocumentRepository) list(query string, args ...any) ([]*domain.Document, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	doc := &domain.Document{}
	var category string

	err := row.Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.FilePath, &doc.MIMEType,
		&doc.SizeBytes, &category, &doc.ContentHash, &doc.Processed, &doc.UploadedBy,
		&doc.CreatedAt)
	if err != nil {
		return nil, err
	}

	// Validate the stored category at the boundary rather than propagating
	// raw strings.
	doc.Category, err = domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
