package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer builds claims for the three credential kinds and signs them with the
// single shared secret, so one verifier can handle any of them.
type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	deviceTTL  time.Duration
	apiKeyTTL  time.Duration
}

func NewIssuer(secret string, sessionTTL, deviceTTL, apiKeyTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		deviceTTL:  deviceTTL,
		apiKeyTTL:  apiKeyTTL,
	}
}

// IssueSession signs a session credential for the user. Role and organization
// are merged into the claims at issuance time by enrichClaims.
func (i *Issuer) IssueSession(user *User) (string, time.Time, error) {
	if user == nil || user.ID == "" {
		return "", time.Time{}, ValidationError{Msg: "user id is required"}
	}
	if !user.Role.Valid() {
		return "", time.Time{}, ValidationError{Msg: "unrecognized role"}
	}

	now := time.Now()
	expiresAt := now.Add(i.sessionTTL)
	claims := enrichClaims(jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}, user)

	token, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// IssueDeviceToken signs a 30-day credential for field hardware. The device
// id is the subject.
func (i *Issuer) IssueDeviceToken(deviceID string) (string, error) {
	if deviceID == "" {
		return "", ValidationError{Msg: "device_id is required"}
	}

	now := time.Now()
	return i.sign(Claims{
		Kind: KindDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.deviceTTL)),
		},
	})
}

// IssueAPIKey signs a 365-day credential embedding a snapshot of the given
// permissions. The snapshot is copied: later catalog or role changes never
// retroactively alter an already-issued key.
func (i *Issuer) IssueAPIKey(userID string, permissions []Permission) (string, error) {
	if userID == "" {
		return "", ValidationError{Msg: "user_id is required"}
	}
	if len(permissions) == 0 {
		return "", ValidationError{Msg: "at least one permission is required"}
	}

	snapshot := make([]Permission, len(permissions))
	copy(snapshot, permissions)

	now := time.Now()
	return i.sign(Claims{
		Kind:        KindAPIKey,
		Permissions: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.apiKeyTTL)),
		},
	})
}

// enrichClaims merges the user's role and organization into session claims.
// It is a pure function invoked synchronously at issuance, replacing the
// implicit login-callback hook of earlier dashboard versions.
func enrichClaims(base jwt.RegisteredClaims, user *User) Claims {
	return Claims{
		Kind:             KindSession,
		Role:             user.Role,
		Organization:     user.Organization,
		RegisteredClaims: base,
	}
}

func (i *Issuer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
