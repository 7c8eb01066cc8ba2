package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), 10)
	return string(bytes), err
}

// VerifySecret checks a submitted secret against the configured one.
// When a bcrypt hash is configured it takes precedence, so the plaintext
// secret never has to live in the environment.
func VerifySecret(submitted, configured, configuredHash string) bool {
	if configuredHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(configuredHash), []byte(submitted)) == nil
	}
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(configured)) == 1
}
