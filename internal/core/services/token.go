package services

import (
	"crypto/rand"
	"encoding/base64"
)

// sessionTokenBytes is the entropy of a session token.
const sessionTokenBytes = 32

// generateSessionToken creates a cryptographically random opaque token.
func generateSessionToken() (string, error) {
	bytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64url encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
