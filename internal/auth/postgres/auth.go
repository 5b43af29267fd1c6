package postgres

import (
	"database/sql"
	"errors"

	"github.com/develper21/MeterBeacon/internal/auth"
	"gorm.io/gorm"
)

// Repository implements auth.UserDirectory on top of the users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByEmail(email string) (*auth.StoredUser, error) {
	var record auth.StoredUser
	var role string

	query := `SELECT id, email, name, role, organization, password_hash, is_active
	          FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&record.ID, &record.Email, &record.Name, &role, &record.Organization, &record.PasswordHash, &record.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	record.Role = auth.Role(role)
	return &record, nil
}
