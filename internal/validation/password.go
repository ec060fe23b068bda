package validation

import (
	"unicode"

	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// PasswordViolations lists every policy rule the password breaks.
func PasswordViolations(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	var violations []string
	if len([]rune(password)) < MinPasswordLength {
		violations = append(violations, "password must be at least 8 characters")
	}
	if !hasUpper {
		violations = append(violations, "password must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "password must contain a symbol")
	}
	return violations
}

// Password returns a validation error when the password breaks the policy.
func Password(password string) error {
	if violations := PasswordViolations(password); len(violations) > 0 {
		return apperrors.NewValidationError("password does not meet policy", violations)
	}
	return nil
}
