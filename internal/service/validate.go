package service

import (
	"regexp"
	"strings"

	"github.com/qivlabs/qiv-auth/internal/model"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// validateRegistration checks registration input field by field and
// returns the first violation found.
func validateRegistration(p RegisterParams) error {
	if err := validateUsername(p.Username); err != nil {
		return err
	}
	if err := validateEmail(p.Email); err != nil {
		return err
	}
	if err := validatePassword(p.Password); err != nil {
		return err
	}
	if p.ConfirmPassword == "" {
		return model.NewValidationError("confirmPassword", "Please confirm your password")
	}
	if p.ConfirmPassword != p.Password {
		return model.NewValidationError("confirmPassword", "Passwords do not match")
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return model.NewValidationError("username", "Username is required")
	}
	if len(username) < 3 {
		return model.NewValidationError("username", "Username must be at least 3 characters long")
	}
	if len(username) > 20 {
		return model.NewValidationError("username", "Username cannot exceed 20 characters")
	}
	if !usernameRegex.MatchString(username) {
		return model.NewValidationError("username", "Username can only contain letters and numbers")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("email", "Email is required")
	}
	if !emailRegex.MatchString(email) {
		return model.NewValidationError("email", "Please enter a valid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return model.NewValidationError("password", "Password is required")
	}
	if len(password) < 8 {
		return model.NewValidationError("password", "Password must be at least 8 characters long")
	}
	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case strings.ContainsRune("!@#$%^&*", r):
			hasSpecial = true
		}
	}
	if !hasDigit || !hasLower || !hasUpper || !hasSpecial {
		return model.NewValidationError("password", "Password must contain at least one number, one uppercase letter, one lowercase letter, and one special character")
	}
	return nil
}

// normalizeEmail lowercases and trims an address before any lookup or
// persistence so that uniqueness holds regardless of input casing.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
