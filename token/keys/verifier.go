package keys

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zestacademy/zestcompilers/internal/errors"
)

// Verification modes
const (
	ModeJWKS = "jwks"
	ModeOIDC = "oidc"
	ModeHMAC = "hmac"
)

var asymmetricMethods = []string{
	"RS256", "RS384", "RS512",
	"ES256", "ES384", "ES512",
	"PS256", "PS384", "PS512",
}

var hmacMethods = []string{"HS256", "HS384", "HS512"}

// Verifier checks the signature of a compact JWT. It does not look at claims.
type Verifier interface {
	VerifySignature(ctx context.Context, rawToken string) error
}

type Options struct {
	Mode       string
	JWKSURL    string
	HMACSecret string
	HTTPClient *http.Client
}

// NewVerifier builds the verifier for opts.Mode. ctx bounds the lifetime of
// any background key set refresh.
func NewVerifier(ctx context.Context, opts Options) (Verifier, error) {
	switch opts.Mode {
	case ModeJWKS, "":
		if opts.JWKSURL == "" {
			return nil, fmt.Errorf("%w: jwks url is required", errors.ErrConfiguration)
		}
		return NewJWKSVerifier(ctx, opts.JWKSURL, opts.HTTPClient), nil
	case ModeOIDC:
		if opts.JWKSURL == "" {
			return nil, fmt.Errorf("%w: jwks url is required", errors.ErrConfiguration)
		}
		return NewRemoteKeySetVerifier(ctx, opts.JWKSURL, opts.HTTPClient), nil
	case ModeHMAC:
		return NewHMACVerifier(opts.HMACSecret)
	default:
		return nil, fmt.Errorf("%w: unknown verification mode %q", errors.ErrConfiguration, opts.Mode)
	}
}
