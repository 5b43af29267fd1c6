package user

import "time"

// User is the persistence model for the users table.
type User struct {
	ID           string    `gorm:"primaryKey" db:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" db:"email"`
	Name         string    `gorm:"column:name" db:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" db:"password_hash"`
	Role         string    `gorm:"column:role;not null;default:viewer" db:"role"`
	Organization string    `gorm:"column:organization" db:"organization"`
	IsActive     bool      `gorm:"column:is_active;default:true" db:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" db:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
