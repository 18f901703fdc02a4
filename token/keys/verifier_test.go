package keys_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/zestacademy/zestcompilers/internal/errors"
	"github.com/zestacademy/zestcompilers/internal/testutil"
	"github.com/zestacademy/zestcompilers/token/keys"
)

func testClaims() jwtlib.MapClaims {
	return jwtlib.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

// foreignToken is signed by a key the auth server never published but
// carries the published kid.
func foreignToken(t *testing.T) string {
	t.Helper()
	other, err := keys.GenerateRSAKeyPair(testutil.TestKeyID, 2048)
	require.NoError(t, err)
	signed, err := keys.NewKeyPairSigner(other).Sign(testClaims())
	require.NoError(t, err)
	return signed
}

// closedJWKSURL points at a listener that has already shut down.
func closedJWKSURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL + testutil.JWKSPath
}

func signedToken(t *testing.T) string {
	t.Helper()
	signed, err := keys.NewKeyPairSigner(testutil.TestKeyPair(t)).Sign(testClaims())
	require.NoError(t, err)
	return signed
}

func requireUpstream(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrUpstream))
	require.False(t, errors.Is(err, errors.ErrInvalidSignature))
}

func TestJWKSVerifier(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := testutil.NewAuthServer(t, "client-1")
	v := keys.NewJWKSVerifier(ctx, srv.JWKSURL(), srv.Client())

	t.Run("published key", func(t *testing.T) {
		require.NoError(t, v.VerifySignature(ctx, srv.MintToken(t, testClaims())))
	})

	t.Run("expired claims are not checked", func(t *testing.T) {
		claims := testClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		require.NoError(t, v.VerifySignature(ctx, srv.MintToken(t, claims)))
	})

	t.Run("unpublished key", func(t *testing.T) {
		err := v.VerifySignature(ctx, foreignToken(t))
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})

	t.Run("symmetric algorithm rejected", func(t *testing.T) {
		signed, err := keys.NewHMACSigner("secret").Sign(testClaims())
		require.NoError(t, err)
		err = v.VerifySignature(ctx, signed)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})
}

func TestJWKSVerifier_KeySetUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	t.Run("unreachable endpoint", func(t *testing.T) {
		v := keys.NewJWKSVerifier(ctx, closedJWKSURL(t), nil)
		t.Cleanup(v.Close)
		requireUpstream(t, v.VerifySignature(ctx, signedToken(t)))
	})

	t.Run("error status", func(t *testing.T) {
		srv := testutil.NewAuthServer(t, "client-1")
		srv.SetJWKSStatus(http.StatusServiceUnavailable)
		v := keys.NewJWKSVerifier(ctx, srv.JWKSURL(), srv.Client())
		t.Cleanup(v.Close)
		requireUpstream(t, v.VerifySignature(ctx, signedToken(t)))
	})

	t.Run("failed fetch is retried", func(t *testing.T) {
		srv := testutil.NewAuthServer(t, "client-1")
		srv.SetJWKSStatus(http.StatusBadGateway)
		v := keys.NewJWKSVerifier(ctx, srv.JWKSURL(), srv.Client())
		t.Cleanup(v.Close)

		requireUpstream(t, v.VerifySignature(ctx, signedToken(t)))

		srv.SetJWKSStatus(http.StatusOK)
		require.NoError(t, v.VerifySignature(ctx, signedToken(t)))
		require.Equal(t, 2, srv.JWKSCalls())
	})
}

func TestRemoteKeySetVerifier(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewAuthServer(t, "client-1")
	v := keys.NewRemoteKeySetVerifier(ctx, srv.JWKSURL(), srv.Client())

	t.Run("published key", func(t *testing.T) {
		require.NoError(t, v.VerifySignature(ctx, srv.MintToken(t, testClaims())))
	})

	t.Run("unpublished key", func(t *testing.T) {
		err := v.VerifySignature(ctx, foreignToken(t))
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})
}

func TestRemoteKeySetVerifier_KeySetUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("unreachable endpoint", func(t *testing.T) {
		v := keys.NewRemoteKeySetVerifier(ctx, closedJWKSURL(t), nil)
		requireUpstream(t, v.VerifySignature(ctx, signedToken(t)))
	})

	t.Run("error status", func(t *testing.T) {
		srv := testutil.NewAuthServer(t, "client-1")
		srv.SetJWKSStatus(http.StatusServiceUnavailable)
		v := keys.NewRemoteKeySetVerifier(ctx, srv.JWKSURL(), srv.Client())
		requireUpstream(t, v.VerifySignature(ctx, signedToken(t)))
	})
}

func TestHMACVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("empty secret", func(t *testing.T) {
		_, err := keys.NewHMACVerifier("")
		require.True(t, errors.Is(err, errors.ErrConfiguration))
	})

	v, err := keys.NewHMACVerifier("jwt-secret")
	require.NoError(t, err)

	t.Run("matching secret", func(t *testing.T) {
		signed, err := keys.NewHMACSigner("jwt-secret").Sign(testClaims())
		require.NoError(t, err)
		require.NoError(t, v.VerifySignature(ctx, signed))
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed, err := keys.NewHMACSigner("other").Sign(testClaims())
		require.NoError(t, err)
		require.True(t, errors.Is(v.VerifySignature(ctx, signed), errors.ErrInvalidSignature))
	})

	t.Run("asymmetric algorithm rejected", func(t *testing.T) {
		signed, err := keys.NewKeyPairSigner(testutil.TestKeyPair(t)).Sign(testClaims())
		require.NoError(t, err)
		require.True(t, errors.Is(v.VerifySignature(ctx, signed), errors.ErrInvalidSignature))
	})
}

func TestNewVerifier(t *testing.T) {
	ctx := context.Background()

	v, err := keys.NewVerifier(ctx, keys.Options{JWKSURL: "https://auth.example.com/jwks"})
	require.NoError(t, err)
	require.IsType(t, &keys.JWKSVerifier{}, v)

	v, err = keys.NewVerifier(ctx, keys.Options{Mode: keys.ModeOIDC, JWKSURL: "https://auth.example.com/jwks"})
	require.NoError(t, err)
	require.IsType(t, &keys.RemoteKeySetVerifier{}, v)

	v, err = keys.NewVerifier(ctx, keys.Options{Mode: keys.ModeHMAC, HMACSecret: "s"})
	require.NoError(t, err)
	require.IsType(t, &keys.HMACVerifier{}, v)

	_, err = keys.NewVerifier(ctx, keys.Options{Mode: keys.ModeJWKS})
	require.True(t, errors.Is(err, errors.ErrConfiguration))

	_, err = keys.NewVerifier(ctx, keys.Options{Mode: "none"})
	require.True(t, errors.Is(err, errors.ErrConfiguration))
}
