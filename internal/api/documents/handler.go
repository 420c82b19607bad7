package documents

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowledgehub/internal/api/middleware"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/service"
)

// maxUploadBytes caps a single document upload at 20 MiB.
const maxUploadBytes = 20 << 20

// Handler serves document upload, ingestion, listing, deletion and stats.
type Handler struct {
	ingest    *service.IngestService
	documents *service.DocumentService
	logger    *zap.Logger
}

// NewHandler creates a new documents handler
func NewHandler(ingest *service.IngestService, documents *service.DocumentService, logger *zap.Logger) *Handler {
	return &Handler{
		ingest:    ingest,
		documents: documents,
		logger:    logger,
	}
}

// RegisterRoutes registers document routes on the given group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ingest", h.Ingest)
	r.POST("/documents", h.Upload)
	r.GET("/documents", h.List)
	r.DELETE("/documents/:id", h.Delete)
	r.GET("/stats", h.Stats)
}

// Upload handles POST /api/documents. Multipart fields: file, title,
// category, and an optional replace flag honored for admins only.
func (h *Handler) Upload(c *gin.Context) {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	category, err := domain.ParseCategory(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	doc, chunks, err := h.ingest.Upload(c.Request.Context(), service.UploadInput{
		Title:    title,
		FileName: fileHeader.Filename,
		MIMEType: mimeType,
		Category: category,
		Data:     data,
		Uploader: user,
		Replace:  c.PostForm("replace") == "true",
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"document": doc,
		"chunks":   chunks,
	})
}

// Ingest handles POST /api/ingest, reprocessing an already-stored document.
func (h *Handler) Ingest(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req domain.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_id is required"})
		return
	}

	chunks, err := h.ingest.Ingest(c.Request.Context(), req.DocumentID, user)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.IngestResponse{Success: true, Chunks: chunks})
}

// List handles GET /api/documents.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	docs, err := h.documents.List(user)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Delete handles DELETE /api/documents/:id.
func (h *Handler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.documents.Delete(c.Param("id"), user); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats handles GET /api/stats; admin only.
func (h *Handler) Stats(c *gin.Context) {
	user := middleware.CurrentUser(c)

	stats, err := h.documents.Stats(user)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var dup *domain.DuplicateError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"error": dup.Error(),
			"match": dup.Match,
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("document request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
