package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalKind tags which of the three independent token schemes a token
// belongs to. Each kind is verified by its own middleware; there is no
// shared session store.
type PrincipalKind string

const (
	PrincipalUser   PrincipalKind = "user"
	PrincipalDoctor PrincipalKind = "doctor"
	PrincipalAdmin  PrincipalKind = "admin"
)

// TokenService issues and verifies the bearer tokens for all principal
// kinds. User and doctor tokens carry only the principal's id; no expiry
// claim is set, matching the contract the clients rely on.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Generate issues a token for a user or doctor principal.
func (s *TokenService) Generate(kind PrincipalKind, id uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id.String(),
		"kind": string(kind),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and kind tag and returns the principal id.
func (s *TokenService) Verify(kind PrincipalKind, tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	if k, _ := claims["kind"].(string); k != string(kind) {
		return uuid.Nil, fmt.Errorf("token is not a %s token", kind)
	}

	rawID, ok := claims["id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("token carries no principal id")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid principal id in token: %w", err)
	}
	return id, nil
}

// GenerateAdmin issues the admin token: a signed copy of the configured
// credential pair. It carries no expiry and cannot be revoked without
// rotating the secret; a holder of leaked credentials can mint it at will.
func (s *TokenService) GenerateAdmin(email, password string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email + password,
		"kind": string(PrincipalAdmin),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAdmin checks the admin token against the configured credentials.
func (s *TokenService) VerifyAdmin(tokenString, email, password string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	if k, _ := claims["kind"].(string); k != string(PrincipalAdmin) {
		return fmt.Errorf("token is not an admin token")
	}

	if sub, _ := claims["sub"].(string); sub != email+password {
		return fmt.Errorf("admin token does not match configured credentials")
	}
	return nil
}

func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
