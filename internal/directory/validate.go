package directory

import (
	"fmt"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername normalizes and checks an account name.
func ValidateUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if len(trimmed) < 3 {
		return "", fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	}
	if len(trimmed) > 50 {
		return "", fmt.Errorf("%w: username must be at most 50 characters", ErrInvalidInput)
	}
	if !usernamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: username contains forbidden characters", ErrInvalidInput)
	}
	return trimmed, nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	if len(password) > 100 {
		return fmt.Errorf("%w: password too long", ErrInvalidInput)
	}
	return nil
}
