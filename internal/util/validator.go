package util

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the e-mail shape used at signup.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 128 {
		return fmt.Errorf("email too long, max 128 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the signup password rule (at least 6 chars).
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password too short, min 6 characters")
	}
	if len(password) > 64 {
		return fmt.Errorf("password too long, max 64 characters")
	}
	return nil
}

// ValidateDisplayName checks the optional profile display name.
func ValidateDisplayName(name string) error {
	if len(name) > 64 {
		return fmt.Errorf("display name too long, max 64 characters")
	}
	return nil
}
