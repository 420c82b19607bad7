package domain

import (
	"fmt"
	"time"
)

// Category is the closed classification label controlling which roles may
// retrieve a document. Raw values from storage or requests must pass through
// ParseCategory before use.
type Category string

const (
	CategoryHR        Category = "hr"
	CategoryTechnical Category = "technical"
	CategoryGeneral   Category = "general"
)

// ParseCategory validates a raw category value at the boundary.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryHR, CategoryTechnical, CategoryGeneral:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, s)
}

// MIME types accepted for ingestion.
const (
	MIMETextPlain = "text/plain"
	MIMETextCSV   = "text/csv"
	MIMEPDF       = "application/pdf"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SupportedMIMEType reports whether uploads of the given type are accepted.
func SupportedMIMEType(mimeType string) bool {
	switch mimeType {
	case MIMETextPlain, MIMETextCSV, MIMEPDF, MIMEDocx:
		return true
	}
	return false
}

// EmbeddingDim is the fixed dimensionality of chunk embeddings.
const EmbeddingDim = 768

// Document represents an uploaded document record.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"` // opaque blob storage key
	MIMEType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Category    Category  `json:"category"`
	ContentHash string    `json:"content_hash"`
	Processed   bool      `json:"processed"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chunk is a bounded, ordered substring of a document's extracted text, the
// unit of retrieval. Chunks are immutable once written and are deleted with
// their document.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float64 `json:"embedding,omitempty"` // nil when absent, exactly EmbeddingDim entries otherwise
}

// MatchType records which duplicate predicate matched an existing document.
type MatchType string

const (
	MatchHash MatchType = "hash"
	MatchName MatchType = "name"
	MatchBoth MatchType = "both"
)

// DuplicateMatch describes an existing document that collides with an upload.
type DuplicateMatch struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	MatchType MatchType `json:"match_type"`
}

// IngestRequest asks the pipeline to process an already-stored document.
type IngestRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	FilePath   string `json:"file_path"`
	MIMEType   string `json:"mime_type"`
}

// IngestResponse reports a completed ingestion.
type IngestResponse struct {
	Success bool `json:"success"`
	Chunks  int  `json:"chunks"`
}

// Stats summarizes stored content.
type Stats struct {
	TotalDocuments     int `json:"total_documents"`
	TotalChunks        int `json:"total_chunks"`
	TotalConversations int `json:"total_conversations"`
}
