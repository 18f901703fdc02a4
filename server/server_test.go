package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zestacademy/zestcompilers/internal/config"
	"github.com/zestacademy/zestcompilers/internal/testutil"
	"github.com/zestacademy/zestcompilers/server"
)

const (
	testClientID    = "zestcompilers"
	testRedirectURI = "http://localhost:8080/auth/callback"
	testState       = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	clearedStateCookie   = "oauth_state=; Max-Age=0; Path=/; HttpOnly; SameSite=Lax"
	clearedSessionCookie = "zest_access_token=; Max-Age=0; Path=/; HttpOnly; SameSite=Lax"
)

var statePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// testFixture holds a server wired to a fake auth server
type testFixture struct {
	authServer *testutil.AuthServer
	server     *server.Server
}

func newFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()

	authServer := testutil.NewAuthServer(t, testClientID)
	vars := map[string]string{
		"NEXT_PUBLIC_AUTH_SERVER_URL": authServer.URL,
		"NEXT_PUBLIC_OAUTH_CLIENT_ID": testClientID,
		"NEXT_PUBLIC_REDIRECT_URI":    testRedirectURI,
		"OAUTH_CLIENT_SECRET":         "client-secret",
		"ALLOWED_ORIGINS":             "https://zestcompilers.tech",
	}
	for k, v := range env {
		vars[k] = v
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := server.New(ctx, config.Load(config.MapLookup(vars)), server.WithHTTPClient(authServer.Client()))
	require.NoError(t, err)

	return &testFixture{authServer: authServer, server: s}
}

func (f *testFixture) do(method, target string, cookies ...string) *http.Response {
	req := httptest.NewRequest(method, target, nil)
	if len(cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(cookies, "; "))
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestLogin(t *testing.T) {
	t.Run("redirects to the auth server with state", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthLogin)

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		require.Equal(t, f.authServer.URL+"/authorize", location.Scheme+"://"+location.Host+location.Path)

		q := location.Query()
		require.Equal(t, testClientID, q.Get("client_id"))
		require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
		require.Equal(t, "code", q.Get("response_type"))
		require.Equal(t, "openid profile email", q.Get("scope"))

		state := q.Get("state")
		require.Regexp(t, statePattern, state)
		require.Equal(t, []string{"oauth_state=" + state + "; Max-Age=600; Path=/; HttpOnly; SameSite=Lax"}, resp.Header.Values("Set-Cookie"))
	})

	t.Run("each login gets a new state", func(t *testing.T) {
		f := newFixture(t, nil)
		first := f.do(http.MethodGet, server.RouteAuthLogin).Header.Get("Set-Cookie")
		second := f.do(http.MethodGet, server.RouteAuthLogin).Header.Get("Set-Cookie")
		require.NotEqual(t, first, second)
	})

	t.Run("keeps the request id supplied by the client", func(t *testing.T) {
		f := newFixture(t, nil)
		req := httptest.NewRequest(http.MethodGet, server.RouteAuthLogin, nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		require.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})

	t.Run("unusable authorization url", func(t *testing.T) {
		f := newFixture(t, map[string]string{"NEXT_PUBLIC_AUTH_SERVER_URL": "auth-server"})
		resp := f.do(http.MethodGet, server.RouteAuthLogin)

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.JSONEq(t, `{"error":"Failed to initiate authentication"}`, readBody(t, resp))
		require.Empty(t, resp.Header.Values("Set-Cookie"))
	})
}

func TestCallback(t *testing.T) {
	callback := func(q url.Values) string {
		return server.RouteAuthCallback + "?" + q.Encode()
	}

	t.Run("success sets session and clears state", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {testState}}), "oauth_state="+testState)

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
		require.Equal(t, 1, f.authServer.TokenCalls())

		cookies := resp.Header.Values("Set-Cookie")
		require.Len(t, cookies, 2)
		require.True(t, strings.HasPrefix(cookies[0], "zest_access_token=ey"))
		require.True(t, strings.HasSuffix(cookies[0], "; Max-Age=604800; Path=/; HttpOnly; SameSite=Lax"))
		require.Equal(t, clearedStateCookie, cookies[1])
	})

	t.Run("state mismatch makes no token call", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {"forged"}}), "oauth_state="+testState)

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/?error=csrf_failed", resp.Header.Get("Location"))
		require.Zero(t, f.authServer.TokenCalls())
		require.Equal(t, []string{clearedStateCookie}, resp.Header.Values("Set-Cookie"))
	})

	t.Run("missing state cookie", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {testState}}))
		require.Equal(t, "/?error=csrf_failed", resp.Header.Get("Location"))
		require.Zero(t, f.authServer.TokenCalls())
	})

	t.Run("token endpoint returns 400", func(t *testing.T) {
		f := newFixture(t, nil)
		f.authServer.SetTokenResponse(http.StatusBadRequest, `{"error":"invalid_grant"}`)
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {testState}}), "oauth_state="+testState)

		require.Equal(t, "/?error=token_exchange_failed", resp.Header.Get("Location"))
		require.Equal(t, 1, f.authServer.TokenCalls())
		require.Equal(t, []string{clearedStateCookie}, resp.Header.Values("Set-Cookie"))
	})

	t.Run("token response without access token", func(t *testing.T) {
		f := newFixture(t, nil)
		f.authServer.SetTokenResponse(http.StatusOK, `{"token_type":"Bearer"}`)
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {testState}}), "oauth_state="+testState)
		require.Equal(t, "/?error=no_token", resp.Header.Get("Location"))
	})

	t.Run("authorization error", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, callback(url.Values{"error": {"access_denied"}, "error_description": {"user cancelled"}}), "oauth_state="+testState)
		require.Equal(t, "/?error=auth_failed", resp.Header.Get("Location"))
		require.Zero(t, f.authServer.TokenCalls())
	})

	t.Run("missing code", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, callback(url.Values{"state": {testState}}), "oauth_state="+testState)
		require.Equal(t, "/?error=invalid_callback", resp.Header.Get("Location"))
	})

	t.Run("unreachable token endpoint", func(t *testing.T) {
		f := newFixture(t, nil)
		f.authServer.Close()
		resp := f.do(http.MethodGet, callback(url.Values{"code": {"c1"}, "state": {testState}}), "oauth_state="+testState)
		require.Equal(t, "/?error=callback_failed", resp.Header.Get("Location"))
	})
}

func TestLogout(t *testing.T) {
	t.Run("local logout makes no revocation call", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthLogout+"?global=false", "zest_access_token=tok")

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
		require.Equal(t, []string{clearedSessionCookie}, resp.Header.Values("Set-Cookie"))
		require.Zero(t, f.authServer.LogoutCalls())
	})

	t.Run("global logout revokes once", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodPost, server.RouteAuthLogout+"?global=true", "zest_access_token=tok")

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, 1, f.authServer.LogoutCalls())
		authorization, _ := f.authServer.LastLogoutRequest()
		require.Equal(t, "Bearer tok", authorization)
		require.Equal(t, []string{clearedSessionCookie}, resp.Header.Values("Set-Cookie"))
	})

	t.Run("failed revocation still clears the session", func(t *testing.T) {
		f := newFixture(t, nil)
		f.authServer.SetLogoutStatus(http.StatusInternalServerError)
		resp := f.do(http.MethodGet, server.RouteAuthLogout+"?global=true", "zest_access_token=tok")

		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
		require.Equal(t, 1, f.authServer.LogoutCalls())
		require.Equal(t, []string{clearedSessionCookie}, resp.Header.Values("Set-Cookie"))
	})

	t.Run("global logout without session", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthLogout+"?global=true")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Zero(t, f.authServer.LogoutCalls())
	})
}

func TestMe(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthMe)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"error":"Not authenticated"}`, readBody(t, resp))
	})

	t.Run("valid session", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthMe, "zest_access_token="+f.authServer.AccessToken(t))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"user":{
			"id":"`+testutil.TestSubject+`",
			"email":"`+testutil.TestEmail+`",
			"name":"`+testutil.TestName+`",
			"picture":"`+testutil.TestPicture+`"}}`, readBody(t, resp))
	})

	t.Run("expired session", func(t *testing.T) {
		f := newFixture(t, nil)
		claims := f.authServer.UserClaims()
		claims["exp"] = time.Now().Add(-time.Second).Unix()
		resp := f.do(http.MethodGet, server.RouteAuthMe, "zest_access_token="+f.authServer.MintToken(t, claims))

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"error":"Token expired"}`, readBody(t, resp))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		f := newFixture(t, nil)
		claims := f.authServer.UserClaims()
		claims["iss"] = "https://evil.example.com"
		resp := f.do(http.MethodGet, server.RouteAuthMe, "zest_access_token="+f.authServer.MintToken(t, claims))

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"error":"Invalid issuer"}`, readBody(t, resp))
	})

	for _, mode := range []string{"jwks", "oidc"} {
		t.Run("key set unavailable with "+mode, func(t *testing.T) {
			f := newFixture(t, map[string]string{"TOKEN_VERIFICATION": mode})
			f.authServer.SetJWKSStatus(http.StatusServiceUnavailable)
			resp := f.do(http.MethodGet, server.RouteAuthMe, "zest_access_token="+f.authServer.AccessToken(t))

			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			require.JSONEq(t, `{"error":"Failed to get user information"}`, readBody(t, resp))
		})
	}

	t.Run("malformed session", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(http.MethodGet, server.RouteAuthMe, "zest_access_token=not-a-jwt")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"error":"Invalid token format"}`, readBody(t, resp))
	})

	t.Run("cors preflight", func(t *testing.T) {
		f := newFixture(t, nil)
		req := httptest.NewRequest(http.MethodOptions, server.RouteAuthMe, nil)
		req.Header.Set("Origin", "https://zestcompilers.tech")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "https://zestcompilers.tech", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}
