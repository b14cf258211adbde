package service

import (
	"regexp"
	"strings"

	"github.com/garasiku/servicebook/internal/apperror"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateEmail checks the address shape. Anything resembling
// local@domain.tld passes; deliverability is not our problem.
func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed("email", "Invalid email format.")
	}
	return nil
}

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// validatePassword enforces the account password policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit and a
// special character.
func validatePassword(password string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperror.ValidationFailed("password",
			"Password must be at least 8 characters long, contain uppercase and lowercase letters, a number, and a special character.")
	}
	return nil
}
