package user

import (
	"fmt"

	"github.com/develper21/MeterBeacon/internal/auth"
)

type Service struct {
	repo    Repository
	catalog *auth.Catalog
}

type Repository interface {
	GetByID(userID string) (*User, error)
	GetAll(limit, offset int) ([]*User, error)
}

func NewService(repo Repository, catalog *auth.Catalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
	}
}

// GetByID returns a user with the permissions their role grants.
func (s *Service) GetByID(userID string) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	u.Permissions = s.permissionsForRole(u.Role)
	return u, nil
}

// GetAll returns a page of users for the admin view.
func (s *Service) GetAll(limit, offset int) ([]*User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.GetAll(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		u.Permissions = s.permissionsForRole(u.Role)
	}
	return users, nil
}

func (s *Service) permissionsForRole(role string) []string {
	perms := s.catalog.PermissionsFor(auth.Role(role))
	result := make([]string, len(perms))
	for i, p := range perms {
		result[i] = string(p)
	}
	return result
}
