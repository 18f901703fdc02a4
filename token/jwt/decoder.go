// Package jwt decodes and validates the access tokens kept in the session cookie
package jwt

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Decode returns the payload of a compact JWT without checking its signature
// or claims. It returns nil when the token is not three dot-separated
// segments or the payload is not a base64url encoded JSON object.
func Decode(rawToken string) *Claims {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil
	}

	// json.Unmarshal accepts null into a struct; only objects carry claims.
	if trimmed := bytes.TrimLeft(payload, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return &claims
}

// IsExpired reports true when the token cannot be decoded, carries no exp or
// its exp is in the past.
func IsExpired(rawToken string) bool {
	claims := Decode(rawToken)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return expired(claims)
}

func expired(claims *Claims) bool {
	return claims.ExpiresAt != nil && claims.ExpiresAt.Unix() < NowTimeFunc().Unix()
}
