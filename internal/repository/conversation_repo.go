package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"knowledgehub/internal/domain"
)

// ConversationRepository handles conversation and message persistence
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a new conversation
func (r *ConversationRepository) Create(conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO conversations (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, conv.ID, conv.UserID, conv.CreatedAt, conv.UpdatedAt)

	return err
}

// Get retrieves a conversation by ID, returning nil when absent
func (r *ConversationRepository) Get(id string) (*domain.Conversation, error) {
	conv := &domain.Conversation{}

	err := r.db.QueryRow(`
		SELECT id, user_id, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id).Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return conv, nil
}

// Touch refreshes a conversation's updated_at timestamp
func (r *ConversationRepository) Touch(id string) error {
	_, err := r.db.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// CreateMessage appends a message to a conversation
func (r *ConversationRepository) CreateMessage(message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	var sources sql.NullString
	if len(message.Sources) > 0 {
		data, err := json.Marshal(message.Sources)
		if err != nil {
			return err
		}
		sources = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.ConversationID, message.Role, message.Content,
		sources, message.CreatedAt)

	return err
}

// GetMessages retrieves all messages for a conversation in order
func (r *ConversationRepository) GetMessages(conversationID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, conversation_id, role, content, sources, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var sources sql.NullString

		if err := rows.Scan(&message.ID, &message.ConversationID, &message.Role,
			&message.Content, &sources, &message.CreatedAt); err != nil {
			return nil, err
		}

		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &message.Sources); err != nil {
				return nil, err
			}
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// Count returns the total number of conversations
func (r *ConversationRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}
