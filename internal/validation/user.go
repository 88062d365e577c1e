// Package validation holds input validation rules shared by the service
// layer.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// Usernames double as author identifiers in post URLs, so names that would
// collide with fixed route segments are reserved.
var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"archive":  {},
	"archives": {},
	"author":   {},
	"health":   {},
	"images":   {},
	"media":    {},
	"metrics":  {},
	"posts":    {},
	"restore":  {},
	"root":     {},
	"system":   {},
}

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// ValidateUsername checks format and reserved-name rules.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of letters, digits, '-' or '_'")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// ValidatePassword enforces the password length policy. Complexity rules are
// deliberately absent; length is the only requirement that measurably helps.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLen)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks the address shape. Deliverability is not verified.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("a valid email address is required")
	}
	return nil
}
