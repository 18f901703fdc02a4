// Package testutil provides an in-process stand-in for the auth server
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/zestacademy/zestcompilers/token/keys"
)

const (
	TestKeyID    = "test-key-1"
	TestSubject  = "user-123"
	TestEmail    = "jane.doe@example.com"
	TestName     = "Jane Doe"
	TestPicture  = "https://example.com/jane.png"
	JWKSPath     = "/.well-known/jwks.json"
	TokenPath    = "/oauth/token"
	LogoutPath   = "/logout"
	defaultTTL   = time.Hour
	rsaKeyLength = 2048
)

var (
	keyOnce    sync.Once
	keyPair    *keys.KeyPair
	keyPairErr error
)

// TestKeyPair returns a process-wide RSA key pair so tests do not pay for
// key generation more than once.
func TestKeyPair(t testing.TB) *keys.KeyPair {
	t.Helper()
	keyOnce.Do(func() {
		keyPair, keyPairErr = keys.GenerateRSAKeyPair(TestKeyID, rsaKeyLength)
	})
	require.NoError(t, keyPairErr)
	return keyPair
}

// AuthServer serves a JWKS, a token endpoint and a logout endpoint and
// records how it was called.
type AuthServer struct {
	*httptest.Server

	ClientID string
	KeyPair  *keys.KeyPair

	mu           sync.Mutex
	jwksStatus   int
	jwksCalls    int
	tokenStatus  int
	tokenBody    string
	logoutStatus int
	tokenCalls   int
	logoutCalls  int
	lastForm     url.Values
	lastAuth     string
	lastCType    string
}

func NewAuthServer(t testing.TB, clientID string) *AuthServer {
	t.Helper()

	s := &AuthServer{
		ClientID:     clientID,
		KeyPair:      TestKeyPair(t),
		jwksStatus:   http.StatusOK,
		tokenStatus:  http.StatusOK,
		logoutStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+JWKSPath, s.handleJWKS)
	mux.HandleFunc("POST "+TokenPath, s.handleToken)
	mux.HandleFunc("POST "+LogoutPath, s.handleLogout)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Issuer is the value tokens minted by this server carry in iss
func (s *AuthServer) Issuer() string {
	return s.URL
}

func (s *AuthServer) JWKSURL() string {
	return s.URL + JWKSPath
}

// SetTokenResponse overrides the token endpoint reply. An empty body makes
// the endpoint mint a fresh access token again.
func (s *AuthServer) SetTokenResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
	s.tokenBody = body
}

// SetJWKSStatus makes the key set endpoint answer with status and no keys
// until it is set back to 200.
func (s *AuthServer) SetJWKSStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jwksStatus = status
}

func (s *AuthServer) JWKSCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jwksCalls
}

func (s *AuthServer) SetLogoutStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutStatus = status
}

func (s *AuthServer) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *AuthServer) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

// LastTokenForm returns the form of the most recent token request
func (s *AuthServer) LastTokenForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastForm
}

// LastLogoutRequest returns the Authorization and Content-Type headers of
// the most recent logout request.
func (s *AuthServer) LastLogoutRequest() (authorization, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth, s.lastCType
}

// UserClaims returns claims for the test user that pass validation against
// this server's issuer and client ID.
func (s *AuthServer) UserClaims() jwtlib.MapClaims {
	now := time.Now()
	return jwtlib.MapClaims{
		"iss":     s.Issuer(),
		"sub":     TestSubject,
		"aud":     s.ClientID,
		"email":   TestEmail,
		"name":    TestName,
		"picture": TestPicture,
		"iat":     now.Unix(),
		"exp":     now.Add(defaultTTL).Unix(),
	}
}

// MintToken signs claims with the server's published key
func (s *AuthServer) MintToken(t testing.TB, claims jwtlib.Claims) string {
	t.Helper()
	signed, err := keys.NewKeyPairSigner(s.KeyPair).Sign(claims)
	require.NoError(t, err)
	return signed
}

// AccessToken mints a valid access token for the test user
func (s *AuthServer) AccessToken(t testing.TB) string {
	t.Helper()
	return s.MintToken(t, s.UserClaims())
}

func (s *AuthServer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.jwksCalls++
	status := s.jwksStatus
	s.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.KeyPair.JWKS())
}

func (s *AuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	s.mu.Lock()
	s.tokenCalls++
	s.lastForm = r.PostForm
	status, body := s.tokenStatus, s.tokenBody
	s.mu.Unlock()

	if body == "" && status == http.StatusOK {
		signed, err := keys.NewKeyPairSigner(s.KeyPair).Sign(s.UserClaims())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body = fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":3600}`, signed)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (s *AuthServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logoutCalls++
	s.lastAuth = r.Header.Get("Authorization")
	s.lastCType = r.Header.Get("Content-Type")
	status := s.logoutStatus
	s.mu.Unlock()

	w.WriteHeader(status)
}
