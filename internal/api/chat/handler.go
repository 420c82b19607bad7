package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowledgehub/internal/api/middleware"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/llm"
	"knowledgehub/internal/service"
)

// Handler serves the streaming chat endpoint and conversation history.
type Handler struct {
	chat   *service.ChatService
	logger *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(chat *service.ChatService, logger *zap.Logger) *Handler {
	return &Handler{chat: chat, logger: logger}
}

// RegisterRoutes registers chat routes on the given group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.GET("/conversations/:id/messages", h.Messages)
}

// Chat handles POST /api/chat. The response is a server-sent event stream:
// one sources frame when any documents were retrieved, then the upstream
// completion frames forwarded byte for byte, ending with the terminal marker.
// All failures that can be detected before streaming begins are returned as
// plain JSON errors; once frames have been written the stream simply stops.
func (h *Handler) Chat(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := service.ValidateChatRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.chat.EnsureConversation(user, req.ConversationID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	lastMessage := req.Messages[len(req.Messages)-1]
	if lastMessage.Role == "user" {
		if err := h.chat.SaveUserTurn(conv.ID, lastMessage.Content); err != nil {
			h.writeError(c, err)
			return
		}
	}

	answer, err := h.chat.Answer(c.Request.Context(), user.Role, req.Messages)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer answer.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Conversation-Id", conv.ID)
	c.Status(http.StatusOK)

	w := c.Writer

	if len(answer.Sources) > 0 {
		payload, err := json.Marshal(gin.H{"sources": answer.Sources})
		if err != nil {
			h.logger.Error("failed to encode sources", zap.Error(err))
			return
		}
		w.WriteString("data: ")
		w.Write(payload)
		w.WriteString("\n\n")
		w.Flush()
	}

	var assistantText strings.Builder
	completed := false

	for {
		frame, err := answer.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Warn("completion stream interrupted",
					zap.String("conversation_id", conv.ID),
					zap.Error(err))
			}
			break
		}

		w.Write(frame.Raw)
		w.Flush()

		assistantText.WriteString(frame.Delta)
		if frame.Done {
			completed = true
			break
		}
	}

	// An interrupted stream leaves no assistant turn; the user message is
	// already saved and the client may retry.
	if completed && assistantText.Len() > 0 {
		if err := h.chat.SaveAssistantTurn(conv.ID, assistantText.String(), answer.Sources); err != nil {
			h.logger.Error("failed to save assistant message",
				zap.String("conversation_id", conv.ID),
				zap.Error(err))
		}
	}
}

// Messages handles GET /api/conversations/:id/messages.
func (h *Handler) Messages(c *gin.Context) {
	user := middleware.CurrentUser(c)

	messages, err := h.chat.GetMessages(user, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, please try again later"})
	case errors.Is(err, llm.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "usage quota exceeded"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
