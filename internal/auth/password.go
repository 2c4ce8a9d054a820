// Package auth implements credential verification, the signed-token codec,
// and the request auth gate with its two policy variants.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCredentials derives a salted adaptive hash for the (username,
// password) pair. The salt is embedded in the bcrypt output, so
// verification needs nothing beyond the stored hash.
func HashCredentials(username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(credentialBytes(username, password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credentials: %w", err)
	}
	return string(hash), nil
}

// VerifyCredentials reports whether the pair matches storedHash. A
// malformed stored hash verifies as false, never as an error.
func VerifyCredentials(username, password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), credentialBytes(username, password)) == nil
}

// The NUL joiner cannot appear in a valid username, so distinct pairs
// never collide ("ab"+"c" vs "a"+"bc").
func credentialBytes(username, password string) []byte {
	return []byte(username + "\x00" + password)
}
