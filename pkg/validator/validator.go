package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// supportedLanguages are the certificate languages the platform renders
	supportedLanguages = map[string]bool{
		"en": true,
		"de": true,
		"et": true,
		"no": true,
	}
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// IsSupportedLanguage reports whether lang is one of the certificate languages
func IsSupportedLanguage(lang string) bool {
	return supportedLanguages[lang]
}

// NormalizeLanguage returns lang if supported, otherwise "en".
// Used when accepting form definitions, where an unknown language is a
// client mistake rather than a rendering request.
func NormalizeLanguage(lang string) string {
	if supportedLanguages[lang] {
		return lang
	}
	return "en"
}

// SanitizeString sanitizes a string by removing potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	email = SanitizeString(email)
	email = strings.ToLower(email)
	return email
}
