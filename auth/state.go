package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const stateLength = 32

// GenerateState returns a fresh CSRF state value: 32 random bytes as 64
// lowercase hex characters.
func GenerateState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
