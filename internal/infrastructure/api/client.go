// Package api implements the HTTP client for the remote organizer API.
// Every response body is untrusted: the client only peels the transport
// envelope, and callers run the payload through the relevant normalizer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/hogarhub/core/internal/infrastructure/config"
	"github.com/hogarhub/core/internal/infrastructure/logger"
)

// Envelope is the uniform `{status, data, message}` body the API wraps every
// response in. Some legacy endpoints answer `{ok, ...}` instead.
type Envelope struct {
	Status  string          `json:"status"`
	OK      *bool           `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Succeeded reports whether the body marks the call as successful
func (e *Envelope) Succeeded() bool {
	if e.Status != "" {
		return e.Status == "success"
	}
	if e.OK != nil {
		return *e.OK
	}
	return true
}

// Client is the shared HTTP client for the remote API
type Client struct {
	http     *http.Client
	routes   Routes
	limiter  *rate.Limiter
	retryMax uint64
	logger   *logger.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg config.APIConfig, appLogger *logger.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		routes:   NewRoutes(cfg.BaseURL(), cfg.BasePath),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		retryMax: uint64(cfg.RetryMax),
		logger:   appLogger.WithComponent("api"),
	}
}

// NewClientWithRoutes creates a client against explicit routes, for tests
func NewClientWithRoutes(routes Routes, appLogger *logger.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		routes:   routes,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   appLogger.WithComponent("api"),
	}
}

// Routes exposes the route builder bound to this client
func (c *Client) Routes() Routes { return c.routes }

// Configured reports whether a base URL was resolved
func (c *Client) Configured() bool { return c.routes.Configured() }

// Get issues a GET and returns the envelope payload. Transport failures are
// retried with bounded exponential backoff; GET is the only verb safe to
// retry blindly.
func (c *Client) Get(ctx context.Context, url string) (json.RawMessage, error) {
	var data json.RawMessage
	operation := func() error {
		var err error
		data, err = c.do(ctx, http.MethodGet, url, nil)
		var apiErr *Error
		if err != nil && errors.As(err, &apiErr) && apiErr.Status > 0 && apiErr.Status < 500 {
			// Application rejection, retrying will not change the answer.
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retryMax), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return data, nil
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, url string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

// Patch issues a PATCH with a JSON body
func (c *Client) Patch(ctx context.Context, url string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, url, body)
}

// Put issues a PUT with a JSON body
func (c *Client) Put(ctx context.Context, url string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, url, body)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, url string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, url, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	if !c.routes.Configured() {
		return nil, &Error{Message: "api base url is not configured"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	if err != nil {
		c.logger.LogAPIRequest(method, url, 0, duration, err)
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.LogAPIRequest(method, url, resp.StatusCode, duration, err)
		return nil, &Error{Message: "read response body: " + err.Error(), Status: resp.StatusCode}
	}

	var envelope Envelope
	if len(raw) > 0 {
		// A body that is not valid JSON is kept verbatim in Details.
		_ = json.Unmarshal(raw, &envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		apiErr := &Error{Message: message, Status: resp.StatusCode, Details: raw}
		c.logger.LogAPIRequest(method, url, resp.StatusCode, duration, apiErr)
		return nil, apiErr
	}

	if !envelope.Succeeded() {
		message := envelope.Message
		if message == "" {
			message = "unexpected server response"
		}
		apiErr := &Error{Message: message, Status: resp.StatusCode, Details: raw}
		c.logger.LogAPIRequest(method, url, resp.StatusCode, duration, apiErr)
		return nil, apiErr
	}

	c.logger.LogAPIRequest(method, url, resp.StatusCode, duration, nil)
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return raw, nil
}
