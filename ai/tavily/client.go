// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package tavily implements ai.SearchClient against the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
)

const (
	// DefaultTimeout is the HTTP timeout for search requests.
	DefaultTimeout = 30 * time.Second

	searchPath      = "/search"
	maxErrorBody    = 4 << 10
	maxSnippetChars = 256
)

// APIError is a non-2xx response from the search API.
type APIError struct {
	StatusCode int
	Snippet    string // redacted and truncated response body
}

func (e *APIError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("tavily: status %d", e.StatusCode)
	}
	return fmt.Sprintf("tavily: status %d: %s", e.StatusCode, e.Snippet)
}

// Client implements ai.SearchClient for Tavily.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ai.SearchClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newClient(config *ai.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: tavily: config is nil", core.ErrConfiguration)
	}
	config.Normalize()
	if config.SearchAPIKey == "" {
		return nil, fmt.Errorf("%w: tavily: SearchAPIKey is required", core.ErrConfiguration)
	}
	baseURL := config.SearchBaseURL
	if baseURL == "" {
		baseURL = ai.DefaultSearchBaseURL
	}

	c := &Client{
		apiKey:     config.SearchAPIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default().With("component", "tavily-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient creates a Tavily search client from the search settings in config.
//
// Returns ai.SearchClient interface to enforce abstraction.
func NewClient(config *ai.Config, opts ...Option) (ai.SearchClient, error) {
	return newClient(config, opts...)
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []ai.RawResult `json:"results"`
}

// Search issues one query. Records are returned as decoded, without
// normalization, in provider relevance order.
func (c *Client) Search(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       req.Query,
		MaxResults:  req.MaxResults,
		SearchDepth: req.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", core.ErrSearchProvider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", core.ErrSearchProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("search request failed", "err", core.RedactSecrets(err.Error()))
		return nil, fmt.Errorf("%w: request failed: %w", core.ErrSearchProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp)
		c.logger.Error("search provider returned error", "status", resp.StatusCode, "err", apiErr)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w: %w", core.ErrSearchProvider, core.ErrAuthentication, apiErr)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrSearchProvider, apiErr)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", core.ErrSearchProvider, err)
	}

	results := make([]ai.RawResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r == nil {
			r = ai.RawResult{}
		}
		results = append(results, r)
	}

	c.logger.Debug("search complete",
		"results", len(results),
		"elapsed", time.Since(start))
	return results, nil
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	snippet := core.RedactSecrets(string(body))
	if r := []rune(snippet); len(r) > maxSnippetChars {
		snippet = string(r[:maxSnippetChars]) + "..."
	}
	return &APIError{StatusCode: resp.StatusCode, Snippet: snippet}
}

// IsAPIError reports whether err carries an APIError with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
