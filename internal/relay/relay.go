// Package relay forwards requests to the external AI matching /
// notification service. It is a pure pass-through: the payload (an
// image_base64 and/or query_text document) and the response both travel
// opaquely — this service holds no opinion about their semantics.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petlink/petlink/internal/apperror"
)

// Result is the upstream's reply, relayed verbatim to our caller.
type Result struct {
	StatusCode int
	Body       []byte
}

// Client talks to one configured AI-service base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a relay client. The generous timeout covers the upstream's
// LLM and vector-search latency.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Forward POSTs the JSON payload to baseURL+path and returns whatever came
// back. A transport-level failure (upstream down, timeout) maps to an
// upstream error; an upstream 4xx/5xx is NOT an error here — the status and
// body are relayed to the caller untouched.
func (c *Client) Forward(ctx context.Context, path string, payload []byte) (*Result, error) {
	if c.baseURL == "" {
		return nil, apperror.Upstream("relay", fmt.Errorf("AI service URL is not configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("relay: building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Correlation id, logged on both ends of the hop.
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("relay request failed",
			slog.String("path", path),
			slog.String("requestID", requestID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("relay "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperror.Upstream("relay "+path, err)
	}

	c.logger.Info("relay request completed",
		slog.String("path", path),
		slog.String("requestID", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
