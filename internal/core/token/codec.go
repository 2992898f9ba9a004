// Package token implements the signed-token codec: HMAC-signed compact
// tokens carrying a subject, issue time, expiry and role claims. Tokens are
// self-contained and never persisted; there is no revocation list, so the
// only compromise mitigation is a short TTL.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

// MinSecretLength is the minimum accepted signing-secret length in bytes.
// Anything shorter than 32 bytes undercuts HS256 and is rejected at startup.
const MinSecretLength = 32

// Claims is the payload signed into every issued token.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a process-wide HS256 secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a Codec. It fails with domain.ErrWeakSigningSecret when
// the secret is absent or below MinSecretLength, so a misconfigured process
// never starts issuing forgeable tokens.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, domain.ErrWeakSigningSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the codec's clock. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token for subject expiring at now + ttl.
func (c *Codec) Issue(subject string, roles []string) (string, error) {
	return c.IssueWithTTL(subject, roles, c.ttl)
}

// IssueWithTTL is Issue with an explicit lifetime, overriding the configured
// one. A negative ttl produces an already-expired token.
func (c *Codec) IssueWithTTL(subject string, roles []string, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// ExtractSubject returns the subject of a valid token. Any failure, whether a
// bad signature, malformed structure, wrong algorithm or past expiry,
// collapses to domain.ErrInvalidToken.
func (c *Codec) ExtractSubject(tok string) (string, error) {
	claims, err := c.parse(tok)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// ExtractClaims returns the full claim set of a valid token.
func (c *Codec) ExtractClaims(tok string) (*Claims, error) {
	claims, err := c.parse(tok)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Verify reports whether the token is well-formed, untampered and unexpired.
// It never returns an error; every failure mode is false.
func (c *Codec) Verify(tok string) bool {
	_, err := c.parse(tok)
	return err == nil
}

func (c *Codec) parse(tok string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
