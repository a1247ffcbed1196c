package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/casedesk/internal/domain"
)

// Service exchanges client credentials for bearer tokens.
type Service interface {
	Token(ctx context.Context, clientID, secret string) (*TokenResponse, error)
}

// Client is a registered API client. SecretHash is a bcrypt hash.
type Client struct {
	ID         string
	SecretHash string
}

type authService struct {
	issuer  *Issuer
	clients map[string][]byte
}

// NewService creates a Service backed by issuer that accepts the given clients.
func NewService(issuer *Issuer, clients []Client) Service {
	m := make(map[string][]byte, len(clients))
	for _, c := range clients {
		m[strings.TrimSpace(c.ID)] = []byte(c.SecretHash)
	}
	return &authService{issuer: issuer, clients: m}
}

// Token verifies secret against the registered hash for clientID.
func (s *authService) Token(_ context.Context, clientID, secret string) (*TokenResponse, error) {
	hash, ok := s.clients[strings.TrimSpace(clientID)]
	if !ok {
		// Don't reveal whether the client exists.
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, expiresAt, err := s.issuer.Issue(strings.TrimSpace(clientID))
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}
	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// HashSecret returns the bcrypt hash to store in auth.clients[].secret_hash.
func HashSecret(secret string) (string, error) {
	if len(secret) < 8 {
		return "", domain.NewValidationError("secret must be at least 8 characters", nil)
	}
	if len(secret) > 72 {
		return "", domain.NewValidationError("secret must not exceed 72 characters", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash secret", err)
	}
	return string(hash), nil
}
