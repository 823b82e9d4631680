package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vilaca/profile-sync/internal/api"
)

// DefaultBaseURL is the public Codeforces API root.
const DefaultBaseURL = "https://codeforces.com/api"

// ErrAPIFailed is returned when the envelope status is not "OK".
var ErrAPIFailed = errors.New("codeforces API reported failure")

// Client retrieves user documents from the Codeforces API.
// Documents are returned as received; only the envelope is inspected.
type Client struct {
	baseURL    string
	httpClient api.HTTPClient
}

// NewClient creates a new Codeforces client.
// Uses dependency injection for HTTPClient (IoC).
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// UserInfo retrieves the user.info document for handle.
func (c *Client) UserInfo(ctx context.Context, handle string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/user.info?handles=%s", c.baseURL, url.QueryEscape(handle))

	raw, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return raw, nil
}

// UserStatus retrieves the user.status (submissions) document for handle.
func (c *Client) UserStatus(ctx context.Context, handle string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/user.status?handle=%s", c.baseURL, url.QueryEscape(handle))

	raw, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user status: %w", err)
	}
	return raw, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return api.Do(ctx, c.httpClient, req)
}

// CheckEnvelope returns ErrAPIFailed if the document reports a non-OK status.
func CheckEnvelope(raw json.RawMessage) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	if env.Status != "OK" {
		if env.Comment != "" {
			return fmt.Errorf("%w: %s", ErrAPIFailed, env.Comment)
		}
		return fmt.Errorf("%w: status %q", ErrAPIFailed, env.Status)
	}
	return nil
}

// Codeforces API response envelope
type envelope struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}
