// Package auth provides JWT issuance/verification, bcrypt password hashing,
// and the middleware that turns a bearer token into a request-scoped Principal.
//
// Tokens are stateless: everything needed to identify the caller (id, name,
// optional role and photo reference, expiry) is inside the signed token, so
// verification requires no database lookup. The HMAC secret is loaded once at
// startup and never mutated, which makes verification safe to run from any
// number of concurrent requests without locking.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long an issued token stays valid. The token carries its
// own expiry; there is no server-side session to extend or revoke.
const tokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for every verification failure: bad signature,
// expired token, malformed payload, wrong algorithm. Collapsing them into one
// value is deliberate so callers (and therefore clients) cannot distinguish
// why a token was rejected.
var ErrInvalidToken = errors.New("auth: invalid token")

// Principal is the authenticated actor for one request, reconstructed from
// verified token claims. It is never persisted; the User entity is the
// durable record it mirrors.
type Principal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// TokenService issues and verifies signed identity tokens.
//
// It holds the HMAC secret used for both operations. The secret is required
// at construction; a process without one must not start (enforced in main).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the principal fields plus the registered
// iat/exp/iss claims. The user id lives in a custom "id" claim (an integer),
// matching what API clients expect.
type claims struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Photo string `json:"photo,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the given principal, valid for 24 hours
// from now.
func (s *TokenService) Issue(p Principal) (string, error) {
	return s.issueWithDuration(p, tokenTTL)
}

// issueWithDuration creates a token with a custom lifetime. Unexported; only
// the tests in this package need to mint expired tokens.
func (s *TokenService) issueWithDuration(p Principal, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		ID:    p.ID,
		Name:  p.Name,
		Role:  p.Role,
		Photo: p.Photo,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "servicebook",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns the Principal it
// encodes.
//
// Checks performed: HMAC-SHA256 signature, expiry, issuer, and structural
// validity of the claims. jwt.WithValidMethods pins the algorithm so a token
// claiming alg "none" (or an asymmetric algorithm) is rejected outright.
// Every failure returns ErrInvalidToken; the reason is intentionally not
// exposed.
func (s *TokenService) Verify(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("servicebook"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.ID == 0 {
		return nil, ErrInvalidToken
	}

	return &Principal{
		ID:    c.ID,
		Name:  c.Name,
		Role:  c.Role,
		Photo: c.Photo,
	}, nil
}
