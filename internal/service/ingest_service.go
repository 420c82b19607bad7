package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"knowledgehub/internal/config"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/repository"
	"knowledgehub/internal/storage"
)

// IngestService runs the document ingestion pipeline: blob, extraction,
// chunking, best-effort embedding, persisted chunks, processed flag.
type IngestService struct {
	documents *repository.DocumentRepository
	chunks    *repository.ChunkRepository
	blobs     *storage.Store
	embedder  Embedder // nil when embedding is not configured
	cfg       *config.Config
	logger    *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	documents *repository.DocumentRepository,
	chunks *repository.ChunkRepository,
	blobs *storage.Store,
	embedder Embedder,
	cfg *config.Config,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		documents: documents,
		chunks:    chunks,
		blobs:     blobs,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ingest processes an already-stored document on behalf of the caller, who
// must be the document's uploader or an admin. It returns the number of
// chunks written.
func (s *IngestService) Ingest(ctx context.Context, documentID string, caller *domain.User) (int, error) {
	doc, err := s.documents.Get(documentID)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, domain.ErrNotFound
	}
	if doc.UploadedBy != caller.ID && !caller.Role.IsAdmin() {
		return 0, domain.ErrForbidden
	}

	return s.process(ctx, doc)
}

// process runs the pipeline for a document record. Extraction and embedding
// failures degrade; the document always reaches the processed state unless
// storage itself fails.
func (s *IngestService) process(ctx context.Context, doc *domain.Document) (int, error) {
	data, err := s.blobs.Read(doc.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to load document blob: %w", err)
	}

	text := ExtractText(data, doc.MIMEType)

	contents, err := ChunkText(text, s.cfg.Ingest.ChunkSize, s.cfg.Ingest.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	// Reprocessing replaces the document's chunks rather than appending.
	if err := s.chunks.DeleteByDocument(doc.ID); err != nil {
		return 0, err
	}

	// Chunks are written one at a time in strictly increasing index order;
	// that ordering is a storage invariant.
	for i, content := range contents {
		var embedding []float64
		if s.embedder != nil {
			embedding, err = s.embedder.Embed(ctx, content)
			if err != nil {
				s.logger.Warn("embedding unavailable for chunk",
					zap.String("document_id", doc.ID),
					zap.Int("chunk_index", i),
					zap.Error(err))
				embedding = nil
			}
		}

		chunk := &domain.Chunk{
			DocumentID: doc.ID,
			Content:    content,
			ChunkIndex: i,
			Embedding:  embedding,
		}
		if err := s.chunks.Insert(chunk); err != nil {
			return 0, fmt.Errorf("failed to persist chunk %d: %w", i, err)
		}
	}

	if err := s.documents.MarkProcessed(doc.ID); err != nil {
		return 0, err
	}

	s.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(contents)))

	return len(contents), nil
}

// UploadInput carries a validated upload from the presentation layer.
type UploadInput struct {
	Title    string
	FileName string
	MIMEType string
	Category domain.Category
	Data     []byte
	Uploader *domain.User
	Replace  bool
}

// Upload stores a new document and ingests it synchronously. Duplicate
// content or file names are rejected for non-admin uploaders; admins may set
// Replace to delete the colliding document (blob, chunks, record) and proceed
// as a fresh upload.
func (s *IngestService) Upload(ctx context.Context, in UploadInput) (*domain.Document, int, error) {
	if !domain.SupportedMIMEType(in.MIMEType) {
		return nil, 0, fmt.Errorf("%w: unsupported mime type %q", domain.ErrInvalidRequest, in.MIMEType)
	}

	contentHash := ComputeContentHash(in.Data)

	// Best-effort duplicate check; no lock spans the check-then-act window,
	// so near-simultaneous identical uploads can both pass.
	match, err := s.documents.FindDuplicate(contentHash, in.FileName)
	if err != nil {
		return nil, 0, err
	}
	if match != nil {
		if !in.Uploader.Role.IsAdmin() || !in.Replace {
			return nil, 0, &domain.DuplicateError{Match: match}
		}
		if err := s.replaceExisting(match); err != nil {
			return nil, 0, err
		}
	}

	key := path.Join(string(in.Category), uuid.New().String()+filepath.Ext(in.FileName))
	if err := s.blobs.Save(key, in.Data); err != nil {
		return nil, 0, err
	}

	doc := &domain.Document{
		Title:       in.Title,
		FileName:    in.FileName,
		FilePath:    key,
		MIMEType:    in.MIMEType,
		SizeBytes:   int64(len(in.Data)),
		Category:    in.Category,
		ContentHash: contentHash,
		UploadedBy:  in.Uploader.ID,
	}
	if err := s.documents.Create(doc); err != nil {
		return nil, 0, err
	}

	count, err := s.process(ctx, doc)
	if err != nil {
		return nil, 0, err
	}
	doc.Processed = true

	return doc, count, nil
}

// replaceExisting tears down a colliding document: blob first, then chunks,
// then the record. The sequence is not atomic; a crash mid-way can orphan a
// blob or chunks.
func (s *IngestService) replaceExisting(match *domain.DuplicateMatch) error {
	s.logger.Info("replacing duplicate document",
		zap.String("document_id", match.ID),
		zap.String("match_type", string(match.MatchType)))

	if err := s.blobs.Delete(match.FilePath); err != nil {
		return err
	}
	if err := s.chunks.DeleteByDocument(match.ID); err != nil {
		return err
	}
	return s.documents.Delete(match.ID)
}
