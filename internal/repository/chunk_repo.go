package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"knowledgehub/internal/domain"
)

// ChunkRepository handles chunk persistence and lexical search
type ChunkRepository struct {
	db *DB
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// Insert writes a single chunk. Callers insert chunks in strictly increasing
// chunk_index order per document.
func (r *ChunkRepository) Insert(chunk *domain.Chunk) error {
	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}

	var embedding sql.NullString
	if chunk.Embedding != nil {
		data, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		embedding = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO chunks (id, document_id, content, chunk_index, embedding)
		VALUES (?, ?, ?, ?, ?)
	`, chunk.ID, chunk.DocumentID, chunk.Content, chunk.ChunkIndex, embedding)

	return err
}

// ListByDocument retrieves a document's chunks in chunk_index order
func (r *ChunkRepository) ListByDocument(documentID string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(`
		SELECT id, document_id, content, chunk_index, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index ASC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		chunk := &domain.Chunk{}
		var embedding sql.NullString

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.ChunkIndex, &embedding); err != nil {
			return nil, err
		}

		if embedding.Valid {
			if err := json.Unmarshal([]byte(embedding.String), &chunk.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode embedding: %w", err)
			}
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// CountByDocument returns the number of chunks stored for a document
func (r *ChunkRepository) CountByDocument(documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&count)
	return count, err
}

// Count returns the total number of chunks
func (r *ChunkRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// DeleteByDocument removes all chunks belonging to a document
func (r *ChunkRepository) DeleteByDocument(documentID string) error {
	_, err := r.db.Exec(`DELETE FROM chunks WHERE document_id = ?`, documentID)
	return err
}

// Search performs lexical matching over chunk content: every token must occur
// in the chunk, and the owning document's category must be in the allowed
// set. Results come back oldest-ingested first, capped at limit.
func (r *ChunkRepository) Search(tokens []string, categories []domain.Category, limit int) ([]domain.RetrievedChunk, error) {
	if len(tokens) == 0 || len(categories) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT c.content, d.title, d.category
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.category IN (` + placeholders(len(categories)) + `)`)

	args := make([]any, 0, len(categories)+len(tokens)+1)
	for _, cat := range categories {
		args = append(args, string(cat))
	}
	for _, token := range tokens {
		sb.WriteString(` AND c.content LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(token)+"%")
	}
	sb.WriteString(` ORDER BY c.rowid ASC LIMIT ?`)
	args = append(args, limit)

	return r.queryRetrieved(sb.String(), args...)
}

// Recent returns the most recently ingested chunks whose document category is
// in the allowed set. Used as grounding fallback when lexical search finds
// nothing.
func (r *ChunkRepository) Recent(categories []domain.Category, limit int) ([]domain.RetrievedChunk, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	query := `
		SELECT c.content, d.title, d.category
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.category IN (` + placeholders(len(categories)) + `)
		ORDER BY c.rowid DESC LIMIT ?`

	args := make([]any, 0, len(categories)+1)
	for _, cat := range categories {
		args = append(args, string(cat))
	}
	args = append(args, limit)

	return r.queryRetrieved(query, args...)
}

func (r *ChunkRepository) queryRetrieved(query string, args ...any) ([]domain.RetrievedChunk, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var (
			chunk    domain.RetrievedChunk
			category string
		)
		if err := rows.Scan(&chunk.Content, &chunk.Title, &category); err != nil {
			return nil, err
		}
		chunk.Category, err = domain.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		results = append(results, chunk)
	}

	return results, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
