package auth

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the directory lookup finds nothing, so a
// missing account costs the same bcrypt work as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service wires password authentication, credential issuance and verification
// behind one API for the HTTP layer.
type Service struct {
	directory  UserDirectory
	issuer     *Issuer
	verifier   *Verifier
	gate       *Gate
	catalog    *Catalog
	bcryptCost int
	logger     *slog.Logger
}

func NewService(directory UserDirectory, issuer *Issuer, verifier *Verifier, catalog *Catalog, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		directory:  directory,
		issuer:     issuer,
		verifier:   verifier,
		gate:       NewGate(catalog),
		catalog:    catalog,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Gate exposes the authorization gate for route middleware.
func (s *Service) Gate() *Gate {
	return s.gate
}

// Catalog exposes the permission catalog, e.g. for snapshotting a role's
// grants into an API key.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Authenticate resolves credentials to a signed session. An unknown email and
// a wrong password both come back as ErrInvalidCredentials; neither case
// short-circuits the hash comparison, so the caller learns nothing about
// which one occurred.
func (s *Service) Authenticate(dto LoginDTO) (Session, error) {
	if err := dto.Validate(); err != nil {
		return Session{}, err
	}

	record, err := s.directory.FindByEmail(dto.Email)
	if err != nil || record == nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(dto.Password))
		return Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	if !record.IsActive {
		return Session{}, ErrUserInactive
	}

	token, expiresAt, err := s.issuer.IssueSession(&record.User)
	if err != nil {
		s.logger.Error("session issuance failed", "error", err, "user_id", record.ID)
		return Session{}, err
	}

	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      record.User,
	}, nil
}

// IssueDeviceToken validates the request and signs a device credential.
func (s *Service) IssueDeviceToken(dto DeviceTokenDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}
	return s.issuer.IssueDeviceToken(dto.DeviceID)
}

// IssueAPIKey validates the request and signs an API key carrying the
// permission snapshot from the request.
func (s *Service) IssueAPIKey(dto APIKeyDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}
	return s.issuer.IssueAPIKey(dto.UserID, dto.PermissionList())
}

func (s *Service) VerifySession(token string) (*Claims, error) {
	return s.verifier.VerifySession(token)
}

func (s *Service) VerifyDeviceToken(token string) (*Claims, error) {
	return s.verifier.VerifyDeviceToken(token)
}

func (s *Service) VerifyAPIKey(token string) (*Claims, error) {
	return s.verifier.VerifyAPIKey(token)
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}
