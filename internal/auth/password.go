package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. The digest self-describes its cost
// and salt, so existing hashes stay verifiable if this is raised later.
const defaultCost = 10

// ErrPasswordMismatch is the expected negative result of Verify: the
// plaintext does not match the stored digest. It is not a system failure and
// callers should branch on it with errors.Is rather than treating it as
// unexpected.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in tests;
// bcrypt.MinCost makes a test suite that hashes dozens of passwords run in
// milliseconds instead of seconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Use bcrypt.MinCost in tests only; it is far too weak for production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext with bcrypt. The output embeds the salt and the
// cost, so it can be stored directly and verified without extra columns.
//
// Returns an error if the plaintext exceeds 72 bytes; bcrypt would silently
// truncate it otherwise.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt digest.
// A mismatch returns ErrPasswordMismatch; any other error means the digest
// itself is unreadable. The comparison is constant-time internally.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
