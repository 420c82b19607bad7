package service

import (
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/repository"
	"knowledgehub/internal/storage"
)

// DocumentService covers document management outside the ingestion pipeline:
// listing, deletion and stats.
type DocumentService struct {
	documents     *repository.DocumentRepository
	chunks        *repository.ChunkRepository
	conversations *repository.ConversationRepository
	blobs         *storage.Store
	logger        *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documents *repository.DocumentRepository,
	chunks *repository.ChunkRepository,
	conversations *repository.ConversationRepository,
	blobs *storage.Store,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documents:     documents,
		chunks:        chunks,
		conversations: conversations,
		blobs:         blobs,
		logger:        logger,
	}
}

// List returns the caller's documents; admins see everyone's.
func (s *DocumentService) List(caller *domain.User) ([]*domain.Document, error) {
	if caller.Role.IsAdmin() {
		return s.documents.ListAll()
	}
	return s.documents.ListByUploader(caller.ID)
}

// Delete removes a document's blob, chunks and record as one logical unit.
// Only the uploader or an admin may delete. The steps are not atomic; a crash
// mid-way can leave orphans.
func (s *DocumentService) Delete(id string, caller *domain.User) error {
	doc, err := s.documents.Get(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	if doc.UploadedBy != caller.ID && !caller.Role.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.blobs.Delete(doc.FilePath); err != nil {
		return err
	}
	if err := s.chunks.DeleteByDocument(doc.ID); err != nil {
		return err
	}
	if err := s.documents.Delete(doc.ID); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		zap.String("document_id", doc.ID),
		zap.String("deleted_by", caller.ID))
	return nil
}

// Stats summarizes stored content; admin only.
func (s *DocumentService) Stats(caller *domain.User) (*domain.Stats, error) {
	if !caller.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	stats := &domain.Stats{}
	var err error

	if stats.TotalDocuments, err = s.documents.Count(); err != nil {
		return nil, err
	}
	if stats.TotalChunks, err = s.chunks.Count(); err != nil {
		return nil, err
	}
	if stats.TotalConversations, err = s.conversations.Count(); err != nil {
		return nil, err
	}

	return stats, nil
}
