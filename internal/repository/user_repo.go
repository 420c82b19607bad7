package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"knowledgehub/internal/domain"
)

// UserRepository handles user identity and role lookups
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The token is the bearer credential presented on
// API calls.
func (r *UserRepository) Create(user *domain.User, token string) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	var role sql.NullString
	if user.Role != "" {
		role = sql.NullString{String: string(user.Role), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO users (id, email, token, role)
		VALUES (?, ?, ?, ?)
	`, user.ID, user.Email, token, role)

	return err
}

// GetByToken resolves a bearer credential to a user, returning nil when the
// token matches nobody. An unassigned role stays empty and resolves to the
// most restrictive category set.
func (r *UserRepository) GetByToken(token string) (*domain.User, error) {
	user := &domain.User{}
	var role sql.NullString

	err := r.db.QueryRow(`
		SELECT id, email, role FROM users WHERE token = ?
	`, token).Scan(&user.ID, &user.Email, &role)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if role.Valid {
		user.Role = domain.Role(role.String)
	}

	return user, nil
}
