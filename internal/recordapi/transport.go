// Package recordapi is the HTTP client for the record REST endpoints.
package recordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/casedesk/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 15 * time.Second
	maxErrorBody    = 1 << 20
)

// Credential is the bearer token presented on every request. It is fixed for
// the lifetime of a Transport; log in again to obtain a new one.
type Credential struct {
	Token string
}

// Bearer returns the Authorization header value, or "" without a token.
func (c Credential) Bearer() string {
	if c.Token == "" {
		return ""
	}
	return "Bearer " + c.Token
}

// Transport sends JSON requests to one server and decodes the response
// envelope. It is safe for concurrent use.
type Transport struct {
	baseURL *url.URL
	cred    Credential
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default client (15 s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransport creates a Transport for the server at baseURL
// (e.g. "http://localhost:8080").
func NewTransport(baseURL string, cred Credential, opts ...Option) (*Transport, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	t := &Transport{
		baseURL: u,
		cred:    cred,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// envelope mirrors the server's response wrapper. Errors is only present on
// validation failures.
type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Do sends one request. query may be nil; body, when non-nil, is encoded as
// JSON. On success the envelope's data is decoded into out (when non-nil).
//
// Failures are *domain.AppError values: CodeUnavailable when no response was
// received, otherwise the code matching the HTTP status, with the server's
// message, field errors and status attached.
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := t.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth := t.cred.Bearer(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.WarnContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", u.Path),
			slog.String("request_id", reqID),
			slog.Any("error", err),
		)
		return domain.NewAppError(domain.CodeUnavailable, "network error", err)
	}
	defer resp.Body.Close()

	t.logger.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", u.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
		slog.String("request_id", reqID),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &domain.AppError{
			Code:    domain.CodeInternal,
			Message: "malformed response",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.AppError{
			Code:    domain.CodeInternal,
			Message: "malformed response data",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}

// decodeError turns a 4xx/5xx response into a *domain.AppError. Non-JSON
// bodies fall back to the status text.
func decodeError(resp *http.Response) error {
	appErr := &domain.AppError{
		Code:    domain.CodeForStatus(resp.StatusCode),
		Message: strings.ToLower(http.StatusText(resp.StatusCode)),
		Status:  resp.StatusCode,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		appErr.Err = err
		return appErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			appErr.Message = env.Message
		}
		if len(env.Errors) > 0 {
			appErr.Fields = env.Errors
		}
	}
	appErr.Err = errors.New(resp.Status)
	return appErr
}
