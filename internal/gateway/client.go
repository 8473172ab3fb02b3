// Package gateway is the HTTP client for the upstream REST gateway. Every
// request carries the ambient auth state (account-id header plus bearer
// token) read from the injected session provider; the client never owns or
// mutates that state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
)

// DefaultTimeout bounds every gateway call; a request that would otherwise
// hang forever surfaces as a retryable timeout instead.
const DefaultTimeout = 15 * time.Second

// Config holds gateway client configuration.
type Config struct {
	// BaseURL is the gateway root, e.g. "https://gateway.internal".
	BaseURL string

	// Timeout is the per-request deadline. Zero means DefaultTimeout.
	Timeout time.Duration
}

// StatusError is returned for non-2xx gateway responses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway %s %s: status %d", e.Method, e.Path, e.Status)
}

// Client issues JSON requests against the gateway.
type Client struct {
	base    string
	http    *http.Client
	session session.Provider
	timeout time.Duration
	tracer  trace.Tracer
}

// New creates a gateway client.
func New(cfg Config, sess session.Provider) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{},
		session: sess,
		timeout: timeout,
		tracer:  otel.Tracer("gateway"),
	}
}

// List fetches one page of an entity collection.
// GET {service}/api/v1/chimney/{entity}?...
func (c *Client) List(ctx context.Context, service, entity string, query url.Values) (*ListDocument, error) {
	var doc ListDocument
	path := fmt.Sprintf("/%s/api/v1/chimney/%s", service, entity)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create posts a new resource and returns the created record.
func (c *Client) Create(ctx context.Context, service, entity string, payload WritePayload) (*Resource, error) {
	var doc SingleDocument
	path := fmt.Sprintf("/%s/api/v1/chimney/%s", service, entity)
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &doc); err != nil {
		return nil, err
	}
	return &doc.Data, nil
}

// Patch updates a resource. Only the success status matters; the response
// body, if any, is ignored.
func (c *Client) Patch(ctx context.Context, service, entity, id string, payload WritePayload) error {
	path := fmt.Sprintf("/%s/api/v1/chimney/%s/%s", service, entity, id)
	return c.do(ctx, http.MethodPatch, path, nil, payload, nil)
}

// Lookup fetches an option list from an arbitrary endpoint under the
// service's v1 root and normalizes the envelope.
func (c *Client) Lookup(ctx context.Context, service, endpoint string) ([]map[string]any, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/%s/api/v1/%s", service, strings.TrimLeft(endpoint, "/"))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	items, ok := ExtractItems(raw)
	if !ok {
		return nil, fmt.Errorf("lookup %s: response carries no item array", path)
	}
	return items, nil
}

// Post issues a bodyless-or-JSON POST against a service utility endpoint
// (cache eviction, feature toggles, document regeneration).
func (c *Client) Post(ctx context.Context, service, endpoint string, body any) error {
	path := fmt.Sprintf("/%s/api/v1/%s", service, strings.TrimLeft(endpoint, "/"))
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "gateway."+method,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.injectAuth(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Bounded read: error bodies are only carried for diagnostics.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(snippet)}
		span.RecordError(statusErr)
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) injectAuth(ctx context.Context, req *http.Request) error {
	token, err := c.session.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve session token: %w", err)
	}
	accountID, err := c.session.AccountID(ctx)
	if err != nil {
		return fmt.Errorf("resolve account id: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("account-id", accountID)
	return nil
}
