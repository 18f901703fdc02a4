package keys

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zestacademy/zestcompilers/internal/errors"
)

// HMACVerifier verifies tokens signed with the shared JWT secret
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: hmac verification requires JWT_SECRET", errors.ErrConfiguration)
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

func (v *HMACVerifier) VerifySignature(_ context.Context, rawToken string) error {
	_, err := jwt.Parse(rawToken, v.verificationKey,
		jwt.WithValidMethods(hmacMethods),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSignature, err)
	}
	return nil
}

func (v *HMACVerifier) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}
