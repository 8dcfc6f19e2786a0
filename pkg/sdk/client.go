package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Content is one catalog entry in a result page.
type Content struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Kind      string   `json:"kind"`
	Year      int      `json:"year,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	Synopsis  string   `json:"synopsis,omitempty"`
}

// Query is one search call.
type Query struct {
	Text    string
	Filters map[string][]string
	Sort    string
	Page    int
	Limit   int
}

// Page is one page of search results.
type Page struct {
	Items   []Content `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
	HasNext bool      `json:"has_next"`
}

// Searcher issues one search call. Implemented by Client; a Session accepts
// any implementation.
type Searcher interface {
	Search(ctx context.Context, q Query) (Page, error)
}

const defaultRequestTimeout = 10 * time.Second

// Compile-time check: Client implements Searcher.
var _ Searcher = (*Client)(nil)

// Client calls the crimedex search API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultRequestTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchBody struct {
	Query   string              `json:"query"`
	Filters map[string][]string `json:"filters,omitempty"`
	Sort    string              `json:"sort,omitempty"`
	Page    int                 `json:"page,omitempty"`
	Limit   int                 `json:"limit,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Search issues one search call against POST /v1/search.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(searchBody{
		Query:   q.Text,
		Filters: q.Filters,
		Sort:    q.Sort,
		Page:    q.Page,
		Limit:   q.Limit,
	})
	if err != nil {
		return Page{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(payload))
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
			return Page{}, fmt.Errorf("search call: %w", err)
		}
		return Page{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Page{}, c.classifyStatus(resp)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("%w: decoding response: %v", ErrUpstreamUnavailable, err)
	}
	return page, nil
}

// classifyStatus maps an error response to the sentinel taxonomy.
func (c *Client) classifyStatus(resp *http.Response) error {
	var body errorBody
	msg := "request failed"
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		msg = body.Message
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidQuery, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrTooManyRequests, msg)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
