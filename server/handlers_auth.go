package server

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/zestacademy/zestcompilers/auth"
	"github.com/zestacademy/zestcompilers/internal/errors"
	"github.com/zestacademy/zestcompilers/token/jwt"
)

const globalLogoutParam = "global"

// LoginHandler starts the authorization-code flow: it stores a fresh CSRF
// state in a short-lived cookie and redirects to the auth server.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		state, err := auth.GenerateState()
		if err != nil {
			logger.Err(err).Msg("Failed to generate OAuth state")
			writeJSONError(w, msgLoginFailed, http.StatusInternalServerError)
			return
		}

		authURL, err := s.auth.AuthorizationURL(state)
		if err != nil {
			logger.Err(err).Msg("Failed to build authorization URL")
			writeJSONError(w, msgLoginFailed, http.StatusInternalServerError)
			return
		}

		w.Header().Add(headerSetCookie, s.jar.StateCookie(state))
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// CallbackHandler finishes the flow. The state cookie is cleared on every
// outcome; the session cookie is only set on success.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		params := auth.CallbackParamsFromQuery(r.URL.Query())
		storedState, _ := s.jar.StoredState(r)
		token, err := s.auth.CompleteCallback(r.Context(), params, storedState)
		if err != nil {
			reason := auth.CallbackReason(err)
			logger.Warn().Err(err).Str("reason", reason).Msg("OAuth callback failed")
			w.Header().Add(headerSetCookie, s.jar.ClearStateCookie())
			redirectHome(w, r, reason)
			return
		}

		w.Header().Add(headerSetCookie, s.jar.SessionCookie(token))
		w.Header().Add(headerSetCookie, s.jar.ClearStateCookie())
		logger.Info().Msg("User signed in")
		redirectHome(w, r, "")
	}
}

// LogoutHandler always clears the local session. With ?global=true it also
// asks the auth server to end its session, best effort.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		global := r.URL.Query().Get(globalLogoutParam) == "true"
		sessionToken, _ := s.jar.SessionToken(r)
		result := s.auth.Logout(r.Context(), sessionToken, global)

		switch result.Revocation {
		case auth.RevocationFailed:
			logger.Warn().Err(result.Err).Msg("Global logout failed, continuing with local logout")
		case auth.RevocationSucceeded:
			logger.Debug().Msg("Global logout succeeded")
		}

		w.Header().Add(headerSetCookie, s.jar.ClearSessionCookie())
		redirectHome(w, r, "")
	}
}

type meResponse struct {
	User *auth.User `json:"user"`
}

// MeHandler returns the signed-in user from the session token
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionToken, _ := s.jar.SessionToken(r)
		user, err := s.auth.CurrentUser(r.Context(), sessionToken)
		if err != nil {
			var validationErr *jwt.ValidationError
			switch {
			case errors.Is(err, errors.ErrNotAuthenticated):
				writeJSONError(w, msgNotAuthenticated, http.StatusUnauthorized)
			case errors.As(err, &validationErr):
				writeJSONError(w, validationErr.Reason, http.StatusUnauthorized)
			default:
				zerolog.Ctx(r.Context()).Err(err).Msg("Failed to get current user")
				writeJSONError(w, msgUserLookupFailed, http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, meResponse{User: user})
	}
}
