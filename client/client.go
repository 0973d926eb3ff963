package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// EvalResult mirrors the server's evaluation response.
type EvalResult struct {
	FlagKey string `json:"flag_key"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
	Bucket  *int   `json:"bucket,omitempty"`
}

// FlagClient is a thin HTTP client for the evaluation endpoint. Decisions are
// computed server-side; the client carries no flag state.
type FlagClient struct {
	addr       string
	env        string
	token      string
	httpClient *http.Client
}

func NewFlagClient(addr, env, token string) *FlagClient {
	return &FlagClient{
		addr:       addr,
		env:        env,
		token:      token,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Evaluate asks the server whether flagKey is enabled for userID.
func (c *FlagClient) Evaluate(ctx context.Context, flagKey, userID string) (*EvalResult, error) {
	q := url.Values{}
	q.Set("env", c.env)
	if userID != "" {
		q.Set("user_id", userID)
	}
	u := fmt.Sprintf("%s/v1/evaluate/%s?%s", c.addr, url.PathEscape(flagKey), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evaluate %s: unexpected status %d", flagKey, httpResp.StatusCode)
	}

	var result EvalResult
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IsEnabled is a convenience wrapper that fails closed on any error.
func (c *FlagClient) IsEnabled(ctx context.Context, flagKey, userID string) bool {
	result, err := c.Evaluate(ctx, flagKey, userID)
	if err != nil {
		return false
	}
	return result.Enabled
}
