package recordapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/schema"
)

// Client is the RecordAPI for one resource, e.g.
// "/api/v1/health/addiction-cases".
type Client[T any] struct {
	t    *Transport
	path string
}

// NewClient creates a Client for the resource at path on t.
func NewClient[T any](t *Transport, path string) *Client[T] {
	return &Client[T]{t: t, path: "/" + strings.Trim(path, "/")}
}

// List fetches one page. Empty filter values are not sent.
func (c *Client[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	var raw json.RawMessage
	if err := c.t.Do(ctx, http.MethodGet, c.path, listQuery(req), nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[T](raw, req)
	if err != nil {
		return nil, &domain.AppError{Code: domain.CodeInternal, Message: "malformed page", Err: err}
	}
	return page, nil
}

// Create posts body and returns the stored record.
func (c *Client[T]) Create(ctx context.Context, body schema.Body) (*T, error) {
	var out T
	if err := c.t.Do(ctx, http.MethodPost, c.path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends body (possibly partial) for the record id.
func (c *Client[T]) Update(ctx context.Context, id string, body schema.Body) (*T, error) {
	var out T
	if err := c.t.Do(ctx, http.MethodPut, c.itemPath(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the record id.
func (c *Client[T]) Delete(ctx context.Context, id string) error {
	return c.t.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil, nil)
}

func (c *Client[T]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

func listQuery(req domain.PageRequest) url.Values {
	q := url.Values{}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if s := strings.TrimSpace(req.Search); s != "" {
		q.Set("search", s)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	for k, v := range req.Filter {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Token is an access token returned by the token endpoint.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges client credentials for a token at baseURL.
func Login(ctx context.Context, baseURL, clientID, secret string, opts ...Option) (Token, error) {
	t, err := NewTransport(baseURL, Credential{}, opts...)
	if err != nil {
		return Token{}, err
	}

	body := map[string]string{"client_id": clientID, "client_secret": secret}
	var tok Token
	if err := t.Do(ctx, http.MethodPost, "/api/v1/auth/token", nil, body, &tok); err != nil {
		return Token{}, err
	}
	if tok.Token == "" {
		return Token{}, errors.New("token endpoint returned no token")
	}
	return tok, nil
}
