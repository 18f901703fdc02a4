package server

import (
	"encoding/json"
	"net/http"
	"net/url"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	headerSetCookie = "Set-Cookie"
)

// Client-facing error messages
const (
	msgLoginFailed           = "Failed to initiate authentication"
	msgNotAuthenticated      = "Not authenticated"
	msgUserLookupFailed      = "Failed to get user information"
	msgInvalidRequestBody    = "Invalid request body"
	msgCompilerNotConfigured = "Compiler API credentials are not configured. Please contact the administrator."
	msgCompileFailed         = "Server error: unexpected error"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorResponse{Error: message})
}

// redirectHome sends the browser to the app home, with ?error=reason when
// reason is set.
func redirectHome(w http.ResponseWriter, r *http.Request, reason string) {
	target := RouteHome
	if reason != "" {
		target += "?" + url.Values{"error": {reason}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}
