package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

const defaultTokenTTL = 15 * time.Minute

// TokenClaims is the typed claim set embedded in every bearer token.
// Unexpected payload shapes fail deserialization instead of being coerced.
type TokenClaims struct {
	Roles []domain.Role `json:"roles"`
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *TokenClaims) Username() string {
	return c.Subject
}

// HasRole reports whether the claim set includes the given role.
func (c *TokenClaims) HasRole(role domain.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenService signs and verifies bearer tokens (HS256 over a compact JWT).
// Tokens are stateless: validity is a function of the signature and the
// expiry claim only, so the TTL is the sole bound on exposure.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the subject with its current role set.
// The signature covers all claims, so any mutation invalidates the token.
func (s *TokenService) Issue(username string, roles []domain.Role) (string, error) {
	now := s.now().UTC()
	claims := TokenClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature, shape, and expiry of a bearer token.
// Every failure mode (malformed input, signature mismatch, unknown roles,
// elapsed expiry) yields domain.ErrInvalidToken; it never panics.
func (s *TokenService) Verify(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" || len(claims.Roles) == 0 {
		return nil, domain.ErrInvalidToken
	}
	for _, r := range claims.Roles {
		if !r.Valid() {
			return nil, domain.ErrInvalidToken
		}
	}

	return claims, nil
}
