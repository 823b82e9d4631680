package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vilaca/profile-sync/internal/api"
)

const (
	// DefaultEndpoint is the public LeetCode GraphQL endpoint.
	DefaultEndpoint = "https://leetcode.com/graphql"
	// MaxRecentSubmissions is the largest list the recent submissions query returns.
	MaxRecentSubmissions = 20

	userAgent = "Mozilla/5.0"
)

var (
	ErrGraphQL       = errors.New("graphql errors in response")
	ErrNoMatchedUser = errors.New("no matched user")
	ErrNoSubmissions = errors.New("no recent submissions")
)

// Client queries the LeetCode GraphQL endpoint.
// Both queries go to the same URL and differ only by request body.
type Client struct {
	endpoint   string
	httpClient api.HTTPClient
}

// NewClient creates a new LeetCode client.
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	endpoint := config.BaseURL
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// UserProfile retrieves aggregate profile statistics for username.
func (c *Client) UserProfile(ctx context.Context, username string) (json.RawMessage, error) {
	raw, err := c.doQuery(ctx, userProfileQuery, map[string]any{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return raw, nil
}

// RecentAcSubmissions retrieves up to limit most recent accepted submissions.
// limit is clamped to 1..MaxRecentSubmissions.
func (c *Client) RecentAcSubmissions(ctx context.Context, username string, limit int) (json.RawMessage, error) {
	if limit <= 0 || limit > MaxRecentSubmissions {
		limit = MaxRecentSubmissions
	}

	raw, err := c.doQuery(ctx, recentAcSubmissionsQuery, map[string]any{"username": username, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}
	return raw, nil
}

func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	return api.Do(ctx, c.httpClient, req)
}

// CheckProfile reports ErrGraphQL or ErrNoMatchedUser for responses that
// carry no usable profile.
func CheckProfile(raw json.RawMessage) error {
	var resp profileResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to decode profile response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return graphqlError(resp.Errors)
	}
	if isNull(resp.Data.MatchedUser) {
		return ErrNoMatchedUser
	}
	return nil
}

// CheckRecentSubmissions reports ErrGraphQL or ErrNoSubmissions for responses
// that carry no submissions.
func CheckRecentSubmissions(raw json.RawMessage) error {
	var resp submissionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to decode submissions response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return graphqlError(resp.Errors)
	}
	if len(resp.Data.RecentAcSubmissionList) == 0 {
		return ErrNoSubmissions
	}
	return nil
}

func graphqlError(errs []gqlError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// GraphQL request and response types
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type profileResponse struct {
	Data struct {
		MatchedUser json.RawMessage `json:"matchedUser"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type submissionsResponse struct {
	Data struct {
		RecentAcSubmissionList []json.RawMessage `json:"recentAcSubmissionList"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}
