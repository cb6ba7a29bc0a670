// Package gateway holds the HTTP clients for the platform's upstream
// microservices. All of them speak the shared ApiResponse envelope
// {code, message, data} and are consumed through small per-domain clients.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable marks a transport failure or a non-success response
	// from an upstream service.
	ErrUnavailable = errors.New("upstream service unavailable")

	// ErrNotFound marks an entity absent at its authoritative source.
	ErrNotFound = errors.New("entity not found")
)

// apiEnvelope is the platform-wide response wrapper.
type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	hc      *http.Client
	logger  *zap.SugaredLogger
}

func newClient(baseURL string, timeout time.Duration, logger *zap.Logger) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		logger:  logger.Sugar(),
	}
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	return c.do(req, out)
}

func (c *client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Warnw("Upstream request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnw("Upstream returned error status", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, req.Method, req.URL.Path, resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, req.URL.Path, err)
	}
	switch envelope.Code {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	default:
		c.logger.Warnw("Upstream returned error envelope", "path", req.URL.Path, "code", envelope.Code, "message", envelope.Message)
		return fmt.Errorf("%w: %s: upstream code %d: %s", ErrUnavailable, req.URL.Path, envelope.Code, envelope.Message)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", ErrUnavailable, req.URL.Path, err)
	}
	return nil
}
