package jwt

import (
	"slices"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a session token
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwtlib.RegisteredClaims
}

// HasAudience reports whether aud names clientID. A single-string aud must
// equal it; an array aud must contain it.
func (c *Claims) HasAudience(clientID string) bool {
	return slices.Contains(c.Audience, clientID)
}
