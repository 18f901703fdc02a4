package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zestacademy/zestcompilers/internal/errors"
)

// RevocationOutcome records what happened to the upstream logout call
type RevocationOutcome string

const (
	RevocationSkipped   RevocationOutcome = "skipped"
	RevocationSucceeded RevocationOutcome = "succeeded"
	RevocationFailed    RevocationOutcome = "failed"
)

// LogoutResult describes a logout. Local logout always succeeds, so the
// result only reports the best-effort upstream call.
type LogoutResult struct {
	Revocation RevocationOutcome
	Err        error
}

// Logout ends the session at the auth server when global is set and a session
// token is present. It never fails; inspect the result to log the outcome.
func (s *Service) Logout(ctx context.Context, sessionToken string, global bool) LogoutResult {
	if !global || sessionToken == "" {
		return LogoutResult{Revocation: RevocationSkipped}
	}

	if err := s.revoke(ctx, sessionToken); err != nil {
		return LogoutResult{Revocation: RevocationFailed, Err: err}
	}
	return LogoutResult{Revocation: RevocationSucceeded}
}

func (s *Service) revoke(ctx context.Context, sessionToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GetLogoutURL(), http.NoBody)
	if err != nil {
		return errors.Wrapf(err, "failed to build logout request")
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", errors.ErrRevocationFailed, errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w: status %d", errors.ErrRevocationFailed, errors.ErrUpstream, resp.StatusCode)
	}
	return nil
}
