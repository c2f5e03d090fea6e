package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ivasibi/ascent/pkg/constant"
)

// HashPassword derives a salted bcrypt digest from the raw password. The
// cost is fixed high enough that offline brute force stays expensive.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), constant.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// PasswordMatches reports whether password produced digest. A malformed
// digest is treated as a mismatch, never an error.
func PasswordMatches(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
