package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/simp-lee/jwt"

	"github.com/simp-lee/casedesk/internal/domain"
)

// IssuerName is the "iss" claim of every token signed by an Issuer.
const IssuerName = "casedesk"

// MinSecretLength is the shortest HMAC secret NewIssuer accepts.
const MinSecretLength = jwt.MinSecretLength

// Issuer signs and verifies bearer tokens whose subject is a client id.
// Call Close when done to stop the revocation cleanup of the underlying
// jwt.Service.
type Issuer struct {
	svc    jwt.Service
	expiry time.Duration
}

// NewIssuer returns an Issuer signing with secret. Tokens expire after expiry.
// opts are applied after the issuer defaults.
func NewIssuer(secret string, expiry time.Duration, opts ...jwt.Option) (*Issuer, error) {
	if expiry <= 0 {
		return nil, errors.New("token expiry must be greater than 0")
	}

	base := []jwt.Option{
		jwt.WithIssuer(IssuerName),
		jwt.WithMaxTokenLifetime(expiry),
		jwt.WithUserRevocationTTL(max(expiry, jwt.DefaultUserRevocationTTL)),
	}
	svc, err := jwt.New(secret, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create jwt service: %w", err)
	}
	return &Issuer{svc: svc, expiry: expiry}, nil
}

// Issue signs a token for subject and returns it with its expiry time.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	token, err := i.svc.GenerateToken(subject, nil, i.expiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	parsed, err := i.svc.ParseToken(token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	return token, parsed.ExpiresAt.UTC(), nil
}

// Verify checks the token signature, issuer and expiry and returns its
// subject. Every failure is reported as domain.ErrUnauthorized.
func (i *Issuer) Verify(token string) (string, error) {
	parsed, err := i.svc.ValidateToken(token)
	if err != nil {
		return "", domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err)
	}
	if parsed.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return parsed.Subject, nil
}

// Close stops the issuer. Tokens can no longer be issued or verified.
func (i *Issuer) Close() {
	i.svc.Close()
}
