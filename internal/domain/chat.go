package domain

import "time"

// Limits on chat request shape, enforced before any retrieval or model call.
const (
	MaxChatMessages  = 100
	MaxMessageLength = 10000
)

// Conversation groups an ordered exchange of user and assistant messages.
// It is created lazily on the first user turn.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a persisted conversation turn.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // user, assistant
	Content        string    `json:"content"`
	Sources        []Source  `json:"sources,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Source is a distinct document contributing at least one retrieved chunk to
// an answer, surfaced for citation.
type Source struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

// RetrievedChunk is a chunk selected as grounding context for an answer.
type RetrievedChunk struct {
	Content  string   `json:"content"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

// ChatMessage is one turn of the incoming conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload of a chat invocation.
type ChatRequest struct {
	Messages       []ChatMessage `json:"messages"`
	ConversationID string        `json:"conversation_id,omitempty"`
}
