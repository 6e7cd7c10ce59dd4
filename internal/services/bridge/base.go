package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FxPilot/internal/domain/models"
	xhttp "FxPilot/pkg/http"
)

// Config describes how to reach the broker bridge.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

// Client is the shared HTTP foundation for the bridge adapters: base URL,
// API key header and retry on transient failures.
type Client struct {
	baseURL string
	retries int
	client  *xhttp.Client
}

// NewClient returns nil when no base URL is configured. Adapters treat a nil
// client as the bridge being unavailable.
func NewClient(cfg Config, opts ...xhttp.ClientOption) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts = append([]xhttp.ClientOption{
		xhttp.WithTimeout(timeout),
		xhttp.WithHeader("X-API-Key", cfg.APIKey),
	}, opts...)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retries: cfg.Retries,
		client:  xhttp.NewClient(opts...),
	}
}

// GetJSON issues GET baseURL+path and decodes the JSON body into dest.
func (b *Client) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b == nil {
		return models.ErrCollaboratorUnavailable
	}
	return b.do(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
}

// PostJSON posts payload once. Orders are not retried: a timeout may still
// have reached the broker.
func (b *Client) PostJSON(ctx context.Context, path string, payload, dest interface{}) error {
	if b == nil {
		return models.ErrCollaboratorUnavailable
	}
	if err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, dest); err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// do runs an idempotent request with up to retries extra attempts.
func (b *Client) do(ctx context.Context, req *xhttp.RequestOptions, dest interface{}) error {
	var err error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = b.client.SendAndParse(ctx, req, dest)
		if err == nil || !retryable(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, strings.TrimPrefix(req.URL, b.baseURL), err)
	}
	return nil
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
