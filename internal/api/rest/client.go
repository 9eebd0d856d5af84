// Package rest is the client side of the account REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks JSON to the account API. Requests carry the bearer token of
// the current session when one is present.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  model.TokenSource
	logger  *logger.Logger
}

// NewClient creates a client for baseURL. tokens may be nil for a client
// that never authenticates.
func NewClient(baseURL string, timeout time.Duration, tokens model.TokenSource, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
		logger: logger,
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// do sends in as JSON and decodes a successful response into out.
// Server rejections with a message become *apierr.ApplicationError, every
// other failure becomes *apierr.TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &apierr.TransportError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &apierr.TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AuthToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("REST: request failed", "op", op, "request_id", requestID, "error", err.Error())
		return &apierr.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var msg messageBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, &msg)
		c.logger.Info("REST: request rejected", "op", op, "request_id", requestID, "status", resp.StatusCode)
		if msg.Message != "" {
			return &apierr.ApplicationError{Status: resp.StatusCode, Message: msg.Message}
		}
		return &apierr.TransportError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &apierr.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func escape(v string) string {
	return url.QueryEscape(v)
}
