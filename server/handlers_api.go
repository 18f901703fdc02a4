package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/zestacademy/zestcompilers/execution"
	"github.com/zestacademy/zestcompilers/internal/errors"
)

const maxCompileBodyBytes = 1 << 20

// CompileHandler proxies code to the execution API so its credentials stay
// on the server.
func (s *Server) CompileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req execution.Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCompileBodyBytes)).Decode(&req); err != nil {
			writeJSONError(w, msgInvalidRequestBody, http.StatusBadRequest)
			return
		}

		result, err := s.executor.Execute(r.Context(), req)
		if err != nil {
			if errors.Is(err, execution.ErrNotConfigured) {
				writeJSONError(w, msgCompilerNotConfigured, http.StatusInternalServerError)
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Str("language", req.Language).Msg("Compilation request failed")
			writeJSONError(w, compileErrorMessage(err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result)
	}
}

func compileErrorMessage(err error) string {
	switch {
	case errors.Is(err, execution.ErrUnavailable):
		return "Server error: " + execution.ErrUnavailable.Error()
	case errors.Is(err, execution.ErrInvalidResponse):
		return "Server error: " + execution.ErrInvalidResponse.Error()
	default:
		return msgCompileFailed
	}
}
