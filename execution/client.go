// Package execution forwards code to the hosted compiler API
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zestacademy/zestcompilers/internal/config"
	"github.com/zestacademy/zestcompilers/internal/errors"
)

const maxResponseBytes = 1 << 20

var (
	ErrNotConfigured   = errors.New("execution credentials are not configured")
	ErrUnavailable     = errors.New("execution service unavailable")
	ErrInvalidResponse = errors.New("invalid response from execution service")
)

// Request is the body the editor posts to the compile route
type Request struct {
	Code         string          `json:"code"`
	Stdin        string          `json:"stdin"`
	Language     string          `json:"language"`
	VersionIndex json.RawMessage `json:"versionIndex,omitempty"`
}

type executeRequest struct {
	ClientID     string          `json:"clientId"`
	ClientSecret string          `json:"clientSecret"`
	Script       string          `json:"script"`
	Stdin        string          `json:"stdin"`
	Language     string          `json:"language"`
	VersionIndex json.RawMessage `json:"versionIndex,omitempty"`
}

// Client calls the execution API once per request, without retries
type Client struct {
	config     config.ExecutionConfig
	httpClient *http.Client
}

func NewClient(cfg config.ExecutionConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{config: cfg, httpClient: httpClient}
}

// Execute runs req and returns the API's JSON result untouched
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	clientID, clientSecret, ok := c.config.ExecutionCredentials()
	if !ok {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(executeRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Script:       req.Code,
		Stdin:        req.Stdin,
		Language:     req.Language,
		VersionIndex: req.VersionIndex,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode execution request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GetExecutionURL(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build execution request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	result, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, errors.ErrUpstream, err)
	}
	if !json.Valid(result) {
		return nil, fmt.Errorf("%w: %w: status %d", ErrInvalidResponse, errors.ErrUpstream, resp.StatusCode)
	}

	return json.RawMessage(result), nil
}
