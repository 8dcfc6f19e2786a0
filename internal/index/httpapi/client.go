// Package httpapi adapts a hosted search API to the index boundary.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/filter"
	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
	"github.com/crimedex/crimedex/internal/index"
)

const defaultTimeout = 5 * time.Second

// Compile-time checks.
var (
	_ index.Adapter       = (*Client)(nil)
	_ index.HealthChecker = (*Client)(nil)
)

// Config holds connection parameters for the hosted index.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // per-call bound; defaults to 5s
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls a hosted search index over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an HTTP index adapter.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    httpClient,
		logger:  logger,
	}
}

type queryRequest struct {
	Query   string         `json:"query"`
	Filters filter.Filters `json:"filters,omitempty"`
	Sort    string         `json:"sort"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type queryResponse struct {
	Items []domain.ContentSummary `json:"items"`
	Total int                     `json:"total"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Query issues one search call. A timeout is surfaced as upstream
// unavailability, never as an empty result.
func (c *Client) Query(ctx context.Context, req request.Request) (result.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{
		Query:   req.NormalizedText(),
		Filters: req.Filters(),
		Sort:    req.Sort(),
		Page:    req.Page(),
		Limit:   req.Limit(),
	})
	if err != nil {
		return result.Result{}, fmt.Errorf("encode index request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return result.Result{}, fmt.Errorf("build index request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return result.Result{}, fmt.Errorf("index query canceled: %w", err)
		}
		return result.Result{}, fmt.Errorf("%w: index query: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		c.logger.Debug("index rejected query",
			zap.Int("status", resp.StatusCode), zap.String("message", er.Message))
		return result.Result{}, fmt.Errorf("%w: index status %d", domain.ErrInvalidQuery, resp.StatusCode)
	default:
		return result.Result{}, fmt.Errorf("%w: index status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return result.Result{}, fmt.Errorf("%w: decode index response: %v", domain.ErrUpstreamUnavailable, err)
	}

	return result.New(qr.Items, qr.Total, req.Page(), req.Limit()), nil
}

// HealthCheck probes the index health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: index health: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: index health status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}
