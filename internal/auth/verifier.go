package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates presented credentials against the shared secret.
// Verification is a pure function of (token, current time, secret, expected
// kind): no I/O, no mutation, safe to call concurrently.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks structure, signature, expiry and kind, in that order, and
// returns the typed claims on success. Each rejection keeps its own sentinel
// so callers never collapse the reason into a generic "invalid token".
func (v *Verifier) Verify(tokenString string, expected CredentialKind) (*Claims, error) {
	if err := v.checkSignature(tokenString); err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	if !claims.Kind.Valid() || claims.Kind != expected {
		return nil, ErrWrongCredentialKind
	}

	return claims, nil
}

// checkSignature verifies the HMAC over the raw header.payload segments
// before anything decodes the claims. A flipped bit anywhere in the payload
// must surface as a signature failure, never as malformed JSON, so the
// signature check cannot be left to the claims parser.
func (v *Verifier) checkSignature(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrMalformedCredential
	}

	parser := jwt.NewParser()

	headerBytes, err := parser.DecodeSegment(parts[0])
	if err != nil {
		return ErrMalformedCredential
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return ErrMalformedCredential
	}

	method, ok := jwt.GetSigningMethod(header.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return ErrInvalidSignature
	}

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return ErrInvalidSignature
	}

	if err := method.Verify(parts[0]+"."+parts[1], sig, v.secret); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func (v *Verifier) VerifySession(tokenString string) (*Claims, error) {
	return v.Verify(tokenString, KindSession)
}

func (v *Verifier) VerifyDeviceToken(tokenString string) (*Claims, error) {
	return v.Verify(tokenString, KindDevice)
}

func (v *Verifier) VerifyAPIKey(tokenString string) (*Claims, error) {
	return v.Verify(tokenString, KindAPIKey)
}

// mapJWTError translates parser failures into the verification taxonomy.
// Malformed structure is reported before signature problems, signature
// problems before expiry, matching the order the checks run in.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedCredential
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrCredentialExpired
	default:
		return ErrMalformedCredential
	}
}
