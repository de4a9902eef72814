// Package utils holds input normalization and validation helpers.
package utils

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	// HandleMinLength is the shortest allowed handle.
	HandleMinLength = 3
	// HandleMaxLength is the longest allowed handle.
	HandleMaxLength = 20
)

// NormalizeHandle returns the canonical form of a handle: surrounding
// whitespace removed, lower case.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// ValidateHandle returns an error if the given normalized handle is invalid.
// A handle is 3 to 20 characters of a-z, 0-9, '-', '_' and '.', and does not
// begin or end with a separator.
func ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}

	if n := len(handle); n < HandleMinLength || n > HandleMaxLength {
		return fmt.Errorf("handle must be between %d and %d characters long", HandleMinLength, HandleMaxLength)
	}

	for _, r := range handle {
		if !isHandleLetter(r) && !isSeparator(r) {
			return fmt.Errorf("handle can only contain lowercase letters, numbers, hyphens, underscores, and periods")
		}
	}

	if isSeparator(rune(handle[0])) || isSeparator(rune(handle[len(handle)-1])) {
		return fmt.Errorf("handle cannot start or end with a separator")
	}

	return nil
}

func isHandleLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.'
}

// NormalizeEmail returns the canonical form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail returns an error if the given email address is not a bare
// address such as "alice@example.com".
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("invalid email address %q", email)
	}

	return nil
}
