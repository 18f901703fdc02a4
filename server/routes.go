package server

import (
	"net/http"

	"github.com/zestacademy/zestcompilers/auth"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.AuthMiddleware(s.fallbackJSONError(msgLoginFailed))...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.AuthMiddleware(s.fallbackCallback())...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.AuthMiddleware(s.fallbackLogout())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.AuthMiddleware(s.fallbackLogout())...))

	// API routes
	me := ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.fallbackJSONError(msgUserLookupFailed))...)
	s.RegisterRouteHandler("GET "+RouteAuthMe, me)
	s.RegisterRouteHandler("OPTIONS "+RouteAuthMe, me)

	compile := ChainMiddleware(s.CompileHandler(), s.APIMiddleware(s.fallbackJSONError(msgCompileFailed))...)
	s.RegisterRouteHandler("POST "+RouteAPICompile, compile)
	s.RegisterRouteHandler("OPTIONS "+RouteAPICompile, compile)
}

// fallbackJSONError answers a panicking JSON route with a generic 500
func (s *Server) fallbackJSONError(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, message, http.StatusInternalServerError)
	}
}

// fallbackCallback ends a panicking callback like any other failed one
func (s *Server) fallbackCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(headerSetCookie, s.jar.ClearStateCookie())
		redirectHome(w, r, auth.ReasonCallbackFailed)
	}
}

// fallbackLogout still performs the local logout
func (s *Server) fallbackLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(headerSetCookie, s.jar.ClearSessionCookie())
		redirectHome(w, r, "")
	}
}
