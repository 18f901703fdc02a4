package auth

import "github.com/zestacademy/zestcompilers/internal/errors"

// Callback failure reasons. They travel to the browser as /?error=<reason>.
const (
	ReasonAuthFailed          = "auth_failed"
	ReasonInvalidCallback     = "invalid_callback"
	ReasonCSRFFailed          = "csrf_failed"
	ReasonTokenExchangeFailed = "token_exchange_failed"
	ReasonNoToken             = "no_token"
	ReasonCallbackFailed      = "callback_failed"
)

// CallbackError ends a callback with a redirect reason. Err holds the detail
// that is logged but never sent to the client.
type CallbackError struct {
	Reason string
	Err    error
}

func (e *CallbackError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

func callbackError(reason string, err error) *CallbackError {
	return &CallbackError{Reason: reason, Err: err}
}

// CallbackReason maps any callback failure to its redirect reason
func CallbackReason(err error) string {
	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return cbErr.Reason
	}
	return ReasonCallbackFailed
}
