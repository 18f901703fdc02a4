package jwt

import (
	"context"

	"github.com/zestacademy/zestcompilers/internal/errors"
	"github.com/zestacademy/zestcompilers/token/keys"
)

// Reasons reported to clients when a token is rejected
const (
	ReasonInvalidFormat    = "Invalid token format"
	ReasonTokenExpired     = "Token expired"
	ReasonInvalidIssuer    = "Invalid issuer"
	ReasonInvalidAudience  = "Invalid audience"
	ReasonInvalidSignature = "Invalid signature"
)

// ValidationError rejects a token. Error returns the client-facing reason.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator accepts tokens issued by the auth server for this client
type Validator struct {
	issuer   string
	audience string
	verifier keys.Verifier
}

// NewValidator creates a validator expecting iss == issuer and aud to name
// audience. Signatures are checked with verifier.
func NewValidator(issuer, audience string, verifier keys.Verifier) *Validator {
	return &Validator{
		issuer:   issuer,
		audience: audience,
		verifier: verifier,
	}
}

// Validate returns the token's claims when it is well formed, unexpired,
// issued by the expected issuer for the expected audience and correctly
// signed. Claims are checked before the signature. Rejections are returned
// as *ValidationError; a key set that cannot be fetched is returned as an
// upstream error instead.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*Claims, error) {
	claims := Decode(rawToken)
	if claims == nil {
		return nil, &ValidationError{Reason: ReasonInvalidFormat, Err: errors.ErrInvalidTokenFormat}
	}

	if expired(claims) {
		return nil, &ValidationError{Reason: ReasonTokenExpired, Err: errors.ErrTokenExpired}
	}

	if claims.Issuer != v.issuer {
		return nil, &ValidationError{Reason: ReasonInvalidIssuer, Err: errors.ErrInvalidIssuer}
	}

	if !claims.HasAudience(v.audience) {
		return nil, &ValidationError{Reason: ReasonInvalidAudience, Err: errors.ErrInvalidAudience}
	}

	if err := v.verifier.VerifySignature(ctx, rawToken); err != nil {
		if errors.Is(err, errors.ErrUpstream) {
			return nil, err
		}
		return nil, &ValidationError{Reason: ReasonInvalidSignature, Err: err}
	}

	return claims, nil
}
