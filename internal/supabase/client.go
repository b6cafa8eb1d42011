// Package supabase is a record store backed by a hosted Supabase project,
// talking to its PostgREST endpoint.
package supabase

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

	"github.com/supabase-community/postgrest-go"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
)

// Client reads and writes item collections through the REST API.
type Client struct {
	restURL string
	anonKey string
	timeout time.Duration
	// transport performs the HTTP round trips; nil means the default.
	transport http.RoundTripper
}

// New creates a client for the project at projectURL. A zero timeout means
// requests are bounded only by their context.
func New(projectURL, anonKey string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(projectURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid project url %q", projectURL)
	}
	if anonKey == "" {
		return nil, fmt.Errorf("anon key required")
	}

	return &Client{
		restURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		anonKey: anonKey,
		timeout: timeout,
	}, nil
}

// APIError is an error response from the REST API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("supabase: %d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Select implements listing.Store.
func (c *Client) Select(ctx context.Context, q model.Query) ([]model.Record, error) {
	if _, err := model.KindFromCollection(q.Collection); err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	rest, rt := c.session(ctx)

	builder := rest.From(q.Collection).Select("*", "", false)
	for _, f := range q.Filters {
		builder = builder.Eq(f.Column, f.Value)
	}
	if q.OrderBy != "" {
		builder = builder.Order(q.OrderBy, &postgrest.OrderOpts{Ascending: !q.Descending})
	}

	data, _, err := builder.Execute()
	if err := rt.result(err); err != nil {
		return nil, fmt.Errorf("listing %s: %w", q.Collection, err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("listing %s: decoding response: %w", q.Collection, err)
	}
	return records, nil
}

// Insert implements listing.Store.
func (c *Client) Insert(ctx context.Context, collection string, rec model.Record) error {
	if _, err := model.KindFromCollection(collection); err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	rest, rt := c.session(ctx)

	_, _, err := rest.From(collection).
		Insert([]model.Record{rec}, false, "", "minimal", "").
		Execute()
	if err := rt.result(err); err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// session returns a PostgREST client for one call. Headers live on the
// client, so each call gets its own: row-level security sees the signed-in
// user when their token is available, the anonymous role otherwise.
func (c *Client) session(ctx context.Context) (*postgrest.Client, *callTransport) {
	bearer := auth.TokenFromContext(ctx)
	if bearer == "" {
		bearer = c.anonKey
	}

	rest := postgrest.NewClient(c.restURL, "", map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + bearer,
	})
	rt := &callTransport{ctx: ctx, next: c.transport}
	if rest.Transport != nil {
		rest.Transport.Parent = rt
	}
	return rest, rt
}

// callTransport binds a call's context to its requests and keeps the
// decoded error response, which postgrest-go reduces to a string.
type callTransport struct {
	ctx    context.Context
	next   http.RoundTripper
	apiErr *APIError
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	resp, err := next.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()

		t.apiErr = &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, t.apiErr) != nil && len(data) > 0 {
			t.apiErr.Message = strings.TrimSpace(string(data))
		}
		resp.Body = io.NopCloser(bytes.NewReader(data))
		return resp, nil
	}

	// postgrest-go leaves the body open, so read it here and close.
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// result prefers the decoded error response over the library's error, and
// keeps a cancelled or expired context visible to errors.Is.
func (t *callTransport) result(err error) error {
	if t.apiErr != nil {
		return t.apiErr
	}
	if err != nil && t.ctx.Err() != nil && !errors.Is(err, t.ctx.Err()) {
		return fmt.Errorf("%w: %v", t.ctx.Err(), err)
	}
	return err
}
