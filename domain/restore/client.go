package restore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is used when Config.Timeout is negative.
const DefaultTimeout = 5 * time.Minute

// maxBody caps how much of a response is read.
const maxBody = 256 << 20

// Restorer performs one restoration exchange.
type Restorer interface {
	Restore(ctx context.Context, p *Payload) (*Result, error)
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	// URL is the full endpoint, e.g. http://localhost:5000/api/restore (required).
	URL string
	// Timeout is the whole-request timeout; zero means none.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client posts payloads to the restoration service. It never retries.
type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("restore client requires a URL")
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{url: cfg.URL, client: hc, logger: logger}, nil
}

// StatusError is returned for non-2xx responses. Message carries the server's
// {"error": ...} text when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Restore sends the payload and decodes the result. Network errors, non-2xx
// statuses and malformed bodies are all returned as errors.
func (c *Client) Restore(ctx context.Context, p *Payload) (*Result, error) {
	body, contentType, err := p.Body()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: serverMessage(data)}
	}
	res, err := decodeResult(data)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Debug("restore.done",
			"rows", res.Rows(),
			"cols", res.Cols(),
			"peak_min", res.Peaks.Min,
			"peak_max", res.Peaks.Max,
			"bytes", len(data),
			"elapsed", time.Since(start),
		)
	}
	return res, nil
}

func serverMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		return body.Error
	}
	return ""
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

var _ Restorer = (*Client)(nil)
