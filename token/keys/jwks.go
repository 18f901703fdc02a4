package keys

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/zestacademy/zestcompilers/internal/errors"
	"golang.org/x/time/rate"
)

const (
	jwksRefreshInterval    = time.Hour
	jwksUnknownKIDEvery    = 5 * time.Minute
	jwksRateLimitWaitMax   = time.Minute
	jwksDefaultHTTPTimeout = 10 * time.Second
)

// JWKSVerifier verifies signatures against the issuer's published key set.
// The set is fetched on first use, refreshed hourly in the background and
// refreshed on an unknown kid at most once every five minutes. A failed
// first fetch is reported as ErrUpstream and retried on the next call.
type JWKSVerifier struct {
	ctx    context.Context
	url    string
	client *http.Client

	mu     sync.Mutex
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
}

func NewJWKSVerifier(ctx context.Context, jwksURL string, client *http.Client) *JWKSVerifier {
	return &JWKSVerifier{ctx: ctx, url: jwksURL, client: client}
}

func (v *JWKSVerifier) VerifySignature(ctx context.Context, rawToken string) error {
	jwks, err := v.keySet()
	if err != nil {
		return err
	}

	_, err = jwt.Parse(rawToken, jwks.Keyfunc,
		jwt.WithValidMethods(asymmetricMethods),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSignature, err)
	}
	return nil
}

func (v *JWKSVerifier) keySet() (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		return v.jwks, nil
	}

	// The storage's refresh goroutine is started before the first fetch, so
	// a failed attempt must cancel its own context.
	ctx, cancel := context.WithCancel(v.ctx)
	jwks, err := v.newKeyfunc(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: jwks %s: %v", errors.ErrUpstream, v.url, err)
	}
	v.jwks, v.cancel = jwks, cancel
	return jwks, nil
}

func (v *JWKSVerifier) newKeyfunc(ctx context.Context) (keyfunc.Keyfunc, error) {
	timeout := jwksDefaultHTTPTimeout
	if v.client != nil && v.client.Timeout > 0 {
		timeout = v.client.Timeout
	}

	remote, err := jwkset.NewStorageFromHTTP(v.url, jwkset.HTTPClientStorageOptions{
		Client:          v.client,
		Ctx:             ctx,
		HTTPTimeout:     timeout,
		RefreshInterval: jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			log.Warn().Err(err).Str("url", v.url).Msg("JWKS refresh failed")
		},
	})
	if err != nil {
		return nil, err
	}

	storage, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{v.url: remote},
		RateLimitWaitMax:  jwksRateLimitWaitMax,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(jwksUnknownKIDEvery), 1),
	})
	if err != nil {
		return nil, err
	}

	return keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
}

// Close stops the background refresh. The verifier fetches again on next use.
func (v *JWKSVerifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	v.jwks, v.cancel = nil, nil
}
