package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is an opaque principal category; behavior is always looked up through
// the permission catalog, never carried by the role itself.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Permission is an atomic capability tag gating one protected action.
type Permission string

// CredentialKind discriminates the three credential shapes. A credential's
// kind is fixed at issuance and must be checked before trusting any
// kind-specific claim.
type CredentialKind string

const (
	KindSession CredentialKind = "session"
	KindDevice  CredentialKind = "device"
	KindAPIKey  CredentialKind = "api_key"
)

func (k CredentialKind) Valid() bool {
	switch k {
	case KindSession, KindDevice, KindAPIKey:
		return true
	}
	return false
}

// User is the identity value handed to the issuer when building session
// claims. It is owned by the identity store; this package never persists it.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
}

// StoredUser is the directory record backing password authentication.
type StoredUser struct {
	User
	PasswordHash string
	IsActive     bool
}

// UserDirectory is the injected identity-lookup collaborator. The service
// never owns user data.
type UserDirectory interface {
	FindByEmail(email string) (*StoredUser, error)
}

// Claims is the signed payload of every credential. Kind selects which of the
// optional fields are meaningful: role and organization for sessions, the
// permission snapshot for API keys, nothing extra for device tokens.
type Claims struct {
	Kind         CredentialKind `json:"type"`
	Role         Role           `json:"role,omitempty"`
	Organization string         `json:"organization,omitempty"`
	Permissions  []Permission   `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether an API-key claim snapshot includes the
// permission. Only meaningful for KindAPIKey claims.
func (c *Claims) HasPermission(permission Permission) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Session is what a successful login returns to the HTTP layer.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// ServiceAPI is the surface handlers and middleware consume.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (Session, error)
	IssueDeviceToken(dto DeviceTokenDTO) (string, error)
	IssueAPIKey(dto APIKeyDTO) (string, error)
	VerifySession(token string) (*Claims, error)
	VerifyDeviceToken(token string) (*Claims, error)
	VerifyAPIKey(token string) (*Claims, error)
	HashPassword(password string) (string, error)
}

// Verification failures are mutually exclusive so callers can preserve the
// original denial reason for observability.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrInvalidSignature    = errors.New("invalid credential signature")
	ErrCredentialExpired   = errors.New("credential expired")
	ErrWrongCredentialKind = errors.New("wrong credential kind")
	ErrForbidden           = errors.New("forbidden")
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "user"
	ContextDeviceKey ctxKey = "device"
	ContextAPIKeyKey ctxKey = "api_key_claims"
)

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// DeviceFromContext returns the device id placed there by the device-token
// middleware.
func DeviceFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextDeviceKey).(string)
	return id, ok
}

func ContextWithDevice(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, ContextDeviceKey, deviceID)
}

func APIKeyClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ContextAPIKeyKey).(*Claims)
	return c, ok
}

func ContextWithAPIKeyClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ContextAPIKeyKey, c)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
