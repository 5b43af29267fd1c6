package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/develper21/MeterBeacon/internal/user"
)

// UserRepository implements the user.Repository interface using sqlx
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID string) (*user.User, error) {
	var u user.User
	query := `
SELECT id, email, name, role, organization, is_active, created_at, updated_at
FROM users
WHERE id = $1`
	if err := r.db.Get(&u, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetAll(limit, offset int) ([]*user.User, error) {
	var users []*user.User
	query := `
SELECT id, email, name, role, organization, is_active, created_at, updated_at
FROM users
ORDER BY created_at ASC
LIMIT $1 OFFSET $2`
	if err := r.db.Select(&users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
