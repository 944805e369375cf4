package util

import (
	"strings"
	"testing"
)

func TestValidateEmail_Valid(t *testing.T) {
	cases := []string{
		"user@example.com",
		"a.b@dominio.com.br",
		"x_y+z@mail.co",
	}

	for _, email := range cases {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) error = %v, want nil", email, err)
		}
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	cases := []string{
		"",
		"plainaddress",
		"@no-local.com",
		"user@",
		"user@nodot",
		"two words@example.com",
		strings.Repeat("a", 120) + "@example.com",
	}

	for _, email := range cases {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) error = nil, want error", email)
		}
	}
}

func TestValidatePassword_MinLength(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Error("5 chars should be rejected")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("6 chars should be accepted, got %v", err)
	}
}

func TestValidatePassword_MaxLength(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("x", 65)); err == nil {
		t.Error("65 chars should be rejected")
	}
	if err := ValidatePassword(strings.Repeat("x", 64)); err != nil {
		t.Errorf("64 chars should be accepted, got %v", err)
	}
}

func TestValidateDisplayName(t *testing.T) {
	if err := ValidateDisplayName(""); err != nil {
		t.Errorf("empty display name is allowed, got %v", err)
	}
	if err := ValidateDisplayName(strings.Repeat("n", 65)); err == nil {
		t.Error("65 chars should be rejected")
	}
}
