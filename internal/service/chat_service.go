package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/llm"
	"knowledgehub/internal/repository"
)

const answerInstruction = "You are an enterprise knowledge assistant. Use the following document excerpts " +
	"to answer the user's question. Always cite which document(s) you used. If the documents don't contain " +
	"relevant information, say so honestly."

const noContextInstruction = "You are an enterprise knowledge assistant. No documents have been uploaded " +
	"yet, or no relevant documents were found for this query. Let the user know they may need to upload " +
	"relevant documents first."

// ChatService orchestrates grounded chat: it retrieves permitted context,
// opens the upstream completion stream, and exposes it for forwarding. Turn
// persistence is left to the calling layer, which saves the user message
// before Answer and the assistant message after the stream completes.
type ChatService struct {
	retrieval     *RetrievalService
	conversations *repository.ConversationRepository
	client        *llm.Client
	logger        *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	retrieval *RetrievalService,
	conversations *repository.ConversationRepository,
	client *llm.Client,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		retrieval:     retrieval,
		conversations: conversations,
		client:        client,
		logger:        logger,
	}
}

// ValidateChatRequest enforces request shape before any retrieval or model
// call: 1..100 messages, each with non-empty content of at most 10000
// characters and a user or assistant role.
func ValidateChatRequest(req *domain.ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", domain.ErrInvalidRequest)
	}
	if len(req.Messages) > domain.MaxChatMessages {
		return fmt.Errorf("%w: at most %d messages allowed", domain.ErrInvalidRequest, domain.MaxChatMessages)
	}
	for i, msg := range req.Messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			return fmt.Errorf("%w: message %d has invalid role %q", domain.ErrInvalidRequest, i, msg.Role)
		}
		if msg.Content == "" {
			return fmt.Errorf("%w: message %d has empty content", domain.ErrInvalidRequest, i)
		}
		if len(msg.Content) > domain.MaxMessageLength {
			return fmt.Errorf("%w: message %d exceeds %d characters", domain.ErrInvalidRequest, i, domain.MaxMessageLength)
		}
	}
	return nil
}

// EnsureConversation resolves the request's conversation, creating one lazily
// when no ID is given. Conversations belong to their creator; admins included,
// nobody reads or writes another user's conversation.
func (s *ChatService) EnsureConversation(user *domain.User, conversationID string) (*domain.Conversation, error) {
	if conversationID == "" {
		conv := &domain.Conversation{UserID: user.ID}
		if err := s.conversations.Create(conv); err != nil {
			return nil, err
		}
		return conv, nil
	}

	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	if conv.UserID != user.ID {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}

// SaveUserTurn persists a user message; called before the model is invoked.
func (s *ChatService) SaveUserTurn(conversationID, content string) error {
	return s.conversations.CreateMessage(&domain.Message{
		ConversationID: conversationID,
		Role:           "user",
		Content:        content,
	})
}

// SaveAssistantTurn persists the assistant's final concatenated text and
// source list; called after the stream completes.
func (s *ChatService) SaveAssistantTurn(conversationID, content string, sources []domain.Source) error {
	if err := s.conversations.CreateMessage(&domain.Message{
		ConversationID: conversationID,
		Role:           "assistant",
		Content:        content,
		Sources:        sources,
	}); err != nil {
		return err
	}
	return s.conversations.Touch(conversationID)
}

// GetMessages returns a conversation's history to its owner.
func (s *ChatService) GetMessages(user *domain.User, conversationID string) ([]*domain.Message, error) {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	if conv.UserID != user.ID {
		return nil, domain.ErrForbidden
	}
	return s.conversations.GetMessages(conversationID)
}

// Answer retrieves grounding context for the last user message and opens the
// upstream completion stream. Upstream handshake failures are returned before
// any streaming begins; llm sentinel errors classify them for the caller.
func (s *ChatService) Answer(ctx context.Context, role domain.Role, messages []domain.ChatMessage) (*Answer, error) {
	query := messages[len(messages)-1].Content

	chunks, sources, err := s.retrieval.Retrieve(role, query)
	if err != nil {
		return nil, err
	}

	llmMessages := make([]llm.Message, 0, len(messages)+1)
	llmMessages = append(llmMessages, llm.Message{Role: "system", Content: buildSystemPrompt(chunks)})
	for _, msg := range messages {
		llmMessages = append(llmMessages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	stream, err := s.client.StreamCompletion(ctx, llmMessages)
	if err != nil {
		return nil, err
	}

	return &Answer{Sources: sources, stream: stream}, nil
}

// Answer is an open completion stream plus the citation sources retrieved
// for it.
type Answer struct {
	Sources []domain.Source
	stream  *llm.Stream
}

// Next returns the next upstream frame; see llm.Stream.Next.
func (a *Answer) Next() (*llm.Frame, error) {
	return a.stream.Next()
}

// Close releases the upstream stream.
func (a *Answer) Close() error {
	return a.stream.Close()
}

func buildSystemPrompt(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return noContextInstruction
	}

	excerpts := make([]string, len(chunks))
	for i, chunk := range chunks {
		excerpts[i] = fmt.Sprintf("[Source: %s]\n%s", chunk.Title, chunk.Content)
	}

	return answerInstruction + "\n\nDOCUMENT CONTEXT:\n" + strings.Join(excerpts, "\n\n---\n\n")
}
