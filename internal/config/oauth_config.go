package config

import (
	"strings"
)

const (
	authServerURLVar     = "NEXT_PUBLIC_AUTH_SERVER_URL"
	clientIDVar          = "NEXT_PUBLIC_OAUTH_CLIENT_ID"
	clientSecretVar      = "OAUTH_CLIENT_SECRET"
	redirectURIVar       = "NEXT_PUBLIC_REDIRECT_URI"
	jwtSecretVar         = "JWT_SECRET"
	cookieSecretVar      = "COOKIE_SECRET"
	jwksURLVar           = "OAUTH_JWKS_URL"
	tokenVerificationVar = "TOKEN_VERIFICATION"

	defaultAuthServerURL = "https://auth.zestacademy.tech"
	defaultClientID      = "zestcompilers"
	defaultRedirectURI   = "https://zestcompilers.tech/api/auth/callback"
)

// Auth server endpoint paths, relative to the auth server base URL
const (
	AuthorizationEndpoint = "/authorize"
	TokenEndpoint         = "/oauth/token"
	LogoutEndpoint        = "/logout"
	JWKSEndpoint          = "/.well-known/jwks.json"
)

// Token signature verification modes
const (
	VerificationJWKS = "jwks"
	VerificationOIDC = "oidc"
	VerificationHMAC = "hmac"
)

type OAuthConfig interface {
	GetAuthServerURL() string
	GetClientID() string
	GetRedirectURI() string
	GetScope() string
	GetScopes() []string
	GetResponseType() string
	GetAuthorizationURL() string
	GetTokenURL() string
	GetLogoutURL() string
	GetJWKSURL() string
	GetTokenVerification() string

	ClientSecret() (string, error)
	JWTSecret() (string, error)
	CookieSecret() (string, error)
}

type OAuth struct {
	authServerURL     string
	clientID          string
	redirectURI       string
	jwksURL           string
	tokenVerification string
	production        bool

	clientSecret Secret
	jwtSecret    Secret
	cookieSecret Secret
}

var _ OAuthConfig = OAuth{}

func loadOAuth(lookup LookupFunc, production bool) OAuth {
	authServerURL := getEnv(lookup, authServerURLVar, defaultAuthServerURL)

	verification := strings.ToLower(getEnv(lookup, tokenVerificationVar, VerificationJWKS))
	switch verification {
	case VerificationJWKS, VerificationOIDC, VerificationHMAC:
	default:
		verification = VerificationJWKS
	}

	return OAuth{
		authServerURL:     authServerURL,
		clientID:          getEnv(lookup, clientIDVar, defaultClientID),
		redirectURI:       getEnv(lookup, redirectURIVar, defaultRedirectURI),
		jwksURL:           getEnv(lookup, jwksURLVar, endpoint(authServerURL, JWKSEndpoint)),
		tokenVerification: verification,
		production:        production,
		clientSecret:      secretFromEnv(lookup, clientSecretVar),
		jwtSecret:         secretFromEnv(lookup, jwtSecretVar),
		cookieSecret:      secretFromEnv(lookup, cookieSecretVar),
	}
}

// GetAuthServerURL returns the auth server base URL exactly as configured.
// It doubles as the expected token issuer.
func (o OAuth) GetAuthServerURL() string {
	return o.authServerURL
}

func (o OAuth) GetClientID() string {
	return o.clientID
}

func (o OAuth) GetRedirectURI() string {
	return o.redirectURI
}

func (o OAuth) GetScope() string {
	return "openid profile email"
}

func (o OAuth) GetScopes() []string {
	return strings.Fields(o.GetScope())
}

func (o OAuth) GetResponseType() string {
	return "code"
}

func (o OAuth) GetAuthorizationURL() string {
	return endpoint(o.authServerURL, AuthorizationEndpoint)
}

func (o OAuth) GetTokenURL() string {
	return endpoint(o.authServerURL, TokenEndpoint)
}

func (o OAuth) GetLogoutURL() string {
	return endpoint(o.authServerURL, LogoutEndpoint)
}

func (o OAuth) GetJWKSURL() string {
	return o.jwksURL
}

func (o OAuth) GetTokenVerification() string {
	return o.tokenVerification
}

func (o OAuth) ClientSecret() (string, error) {
	return o.clientSecret.Resolve(o.production)
}

func (o OAuth) JWTSecret() (string, error) {
	return o.jwtSecret.Resolve(o.production)
}

// CookieSecret is only checked by Validate. Cookies hold the issuer's signed
// token, so the service never signs with it.
func (o OAuth) CookieSecret() (string, error) {
	return o.cookieSecret.Resolve(o.production)
}

func (o OAuth) requiredSecrets() []Secret {
	return []Secret{o.clientSecret, o.jwtSecret, o.cookieSecret}
}

func endpoint(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + path
}
