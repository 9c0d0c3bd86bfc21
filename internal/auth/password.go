package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "taskapi/internal/errors"
)

const bcryptCost = 10

// CheckPasswordPolicy rejects empty passwords and any password containing
// "password" in any letter case. The substring rule is a weak heuristic and
// should not be mistaken for a real strength policy.
func CheckPasswordPolicy(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.Validation("password is required")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return apperrors.Validation(`password cannot contain "password"`)
	}
	return nil
}

// HashPassword applies the policy and returns a salted bcrypt hash.
func HashPassword(password string) (string, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether password matches hash. bcrypt compares in
// constant time.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when no user matches, so a missing account
// costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-secret"), bcryptCost)

// BurnCompare spends one bcrypt comparison and always fails.
func BurnCompare(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
