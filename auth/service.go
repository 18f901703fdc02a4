// Package auth runs the authorization-code flow against the Zest auth server
// and resolves the signed-in user from the session token.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zestacademy/zestcompilers/internal/config"
	"github.com/zestacademy/zestcompilers/internal/errors"
	"github.com/zestacademy/zestcompilers/token/jwt"
	"golang.org/x/oauth2"
)

// CallbackParams are the query parameters the auth server redirects back with
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromQuery reads the callback parameters from a request query
func CallbackParamsFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// User is the identity exposed by the current-user endpoint
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Service drives login, callback, logout and current-user lookup. It keeps no
// per-request state; everything travels in cookies and query parameters.
type Service struct {
	config     config.OAuthConfig
	validator  *jwt.Validator
	httpClient *http.Client
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithHTTPClient sets the client used for calls to the auth server
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = client
	}
}

func NewService(cfg config.OAuthConfig, validator *jwt.Validator, opts ...ServiceOption) *Service {
	s := &Service{
		config:     cfg,
		validator:  validator,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthorizationURL builds the authorize URL carrying client_id, redirect_uri,
// response_type, scope and state.
func (s *Service) AuthorizationURL(state string) (string, error) {
	authURL, err := url.Parse(s.config.GetAuthorizationURL())
	if err != nil {
		return "", errors.Wrapf(errors.ErrConfiguration, "invalid authorization url")
	}
	if authURL.Scheme == "" || authURL.Host == "" {
		return "", fmt.Errorf("%w: authorization url %q is not absolute", errors.ErrConfiguration, authURL)
	}
	return s.oauthConfig("").AuthCodeURL(state), nil
}

// CompleteCallback checks the callback against the stored state and exchanges
// the code for an access token. Every failure is a *CallbackError.
func (s *Service) CompleteCallback(ctx context.Context, params CallbackParams, storedState string) (string, error) {
	if params.Error != "" {
		return "", callbackError(ReasonAuthFailed,
			fmt.Errorf("%w: %s %s", errors.ErrAuthorizationError, params.Error, params.ErrorDescription))
	}

	if params.Code == "" || params.State == "" {
		return "", callbackError(ReasonInvalidCallback, errors.ErrInvalidCallback)
	}

	if storedState == "" || subtle.ConstantTimeCompare([]byte(storedState), []byte(params.State)) != 1 {
		return "", callbackError(ReasonCSRFFailed, errors.ErrStateMismatch)
	}

	clientSecret, err := s.config.ClientSecret()
	if err != nil {
		return "", callbackError(ReasonCallbackFailed, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauthConfig(clientSecret).Exchange(ctx, params.Code)
	if err != nil {
		return "", classifyExchangeError(err)
	}

	return token.AccessToken, nil
}

// oauth2MissingAccessToken is the text golang.org/x/oauth2 returns when a
// 2xx token response has no access_token. The library has no sentinel for it.
const oauth2MissingAccessToken = "oauth2: server response missing access_token"

func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &retrieveErr):
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return callbackError(ReasonTokenExchangeFailed,
			fmt.Errorf("%w: status %d: %s", errors.ErrTokenExchangeFailed, status, retrieveErr.Body))
	case strings.Contains(err.Error(), oauth2MissingAccessToken):
		return callbackError(ReasonNoToken, errors.ErrNoAccessToken)
	default:
		return callbackError(ReasonCallbackFailed, errors.Wrapf(err, "token exchange"))
	}
}

// CurrentUser validates the session token and returns the user it names.
// Rejected tokens come back as *jwt.ValidationError.
func (s *Service) CurrentUser(ctx context.Context, sessionToken string) (*User, error) {
	if sessionToken == "" {
		return nil, errors.ErrNotAuthenticated
	}

	claims, err := s.validator.Validate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (s *Service) oauthConfig(clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.config.GetClientID(),
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.config.GetAuthorizationURL(),
			TokenURL:  s.config.GetTokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: s.config.GetRedirectURI(),
		Scopes:      s.config.GetScopes(),
	}
}
