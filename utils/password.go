package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of the password using a cost that balances security and performance.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// passwordSymbols is the punctuation set accepted by the complexity policy.
const passwordSymbols = `!@#$%^&*(),.?"':{}|<>[]\/;_+=~-`

// ValidatePasswordPolicy checks the composite password policy and returns
// every failing rule, not just the first one. An empty slice means the
// password is acceptable.
func ValidatePasswordPolicy(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		problems = append(problems, "password must include at least one uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "password must include at least one lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "password must include at least one number")
	}
	if !hasSymbol {
		problems = append(problems, "password must include at least one special character")
	}
	return problems
}
