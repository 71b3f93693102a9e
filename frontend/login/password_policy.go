package login

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"gridstock/infrastructure/apperr"
)

// Password rules for warehouse accounts. The upper bound keeps argon2 work
// per login attempt predictable.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
	maxRepeatedRune   = 3
)

// ValidatePasswordPolicy reports the first rule password breaks as an
// apperr.ValidationError on the password field.
func ValidatePasswordPolicy(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case n < MinPasswordLength:
		return apperr.Validation("password", "must be at least %d characters", MinPasswordLength)
	case n > MaxPasswordLength:
		return apperr.Validation("password", "must be at most %d characters", MaxPasswordLength)
	case strings.TrimSpace(password) != password:
		return apperr.Validation("password", "must not start or end with a space")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	var prev rune
	run := 0
	for _, r := range password {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > maxRepeatedRune {
			return apperr.Validation("password", "must not repeat a character more than %d times in a row", maxRepeatedRune)
		}
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

	missing := make([]string, 0, 4)
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSymbol {
		missing = append(missing, "a symbol")
	}
	if len(missing) > 0 {
		return apperr.Validation("password", "must include %s", strings.Join(missing, ", "))
	}
	return nil
}
