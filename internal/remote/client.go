// Package remote is the HTTP client for a jsonplaceholder-style /todos
// collection. Every method is a single request/response round trip: no
// retries, no caching.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada-sync/internal/model"
)

// DefaultBaseURL is the public placeholder service.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

const collection = "todos"

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Options configure a Client. Zero values fall back to sane defaults.
type Options struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	StrictSchema bool
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// Client talks to <BaseURL>/todos.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	timeout time.Duration
	schemas *validator // nil unless strict
	log     *log.Logger
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", raw)
	}

	c := &Client{
		base:    base,
		http:    opts.HTTPClient,
		token:   opts.Token,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.log == nil {
		c.log = log.New(io.Discard)
	}
	if opts.StrictSchema {
		v, err := newValidator()
		if err != nil {
			return nil, err
		}
		c.schemas = v
	}
	return c, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.base.String() }

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var out []model.Todo
	if err := c.do(ctx, OpList, http.MethodGet, c.collectionURL(), nil, schemaTodos, &out, nil); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Todo{}
	}
	return out, nil
}

// Create posts a new record and returns the server's echo, including
// the id it assigned.
func (c *Client) Create(ctx context.Context, t model.NewTodo) (model.Todo, error) {
	var out model.Todo
	hasID := func() error {
		if out.ID == 0 {
			return errors.New("no id in response")
		}
		return nil
	}
	if err := c.do(ctx, OpCreate, http.MethodPost, c.collectionURL(), t, schemaTodo, &out, hasID); err != nil {
		return model.Todo{}, err
	}
	return out, nil
}

// SetCompleted sends {"completed": v} and returns the completed value
// the server acknowledged.
func (c *Client) SetCompleted(ctx context.Context, id int, completed bool) (bool, error) {
	var out struct {
		Completed *bool `json:"completed"`
	}
	body := map[string]bool{"completed": completed}
	hasCompleted := func() error {
		if out.Completed == nil {
			return errors.New("no completed in response")
		}
		return nil
	}
	if err := c.do(ctx, OpToggle, http.MethodPut, c.itemURL(id), body, schemaCompleted, &out, hasCompleted); err != nil {
		return false, err
	}
	return *out.Completed, nil
}

// Rename sends {"title": title} and returns the title the server echoed.
func (c *Client) Rename(ctx context.Context, id int, title string) (string, error) {
	var out struct {
		Title *string `json:"title"`
	}
	body := map[string]string{"title": title}
	hasTitle := func() error {
		if out.Title == nil {
			return errors.New("no title in response")
		}
		return nil
	}
	if err := c.do(ctx, OpRename, http.MethodPut, c.itemURL(id), body, schemaTitle, &out, hasTitle); err != nil {
		return "", err
	}
	return *out.Title, nil
}

// Delete removes a record. Only the status is checked.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, OpDelete, http.MethodDelete, c.itemURL(id), nil, "", nil, nil)
}

func (c *Client) collectionURL() string {
	return c.base.JoinPath(collection).String()
}

func (c *Client) itemURL(id int) string {
	return c.base.JoinPath(collection, strconv.Itoa(id)).String()
}

// do runs one round trip. check, if set, inspects out after decoding;
// its error is reported as ErrMalformed.
func (c *Client) do(ctx context.Context, op Op, method, u string, in any, schema string, out any, check func() error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqID := requestID()
	fail := func(status int, err error) error {
		return &Error{Op: op, Method: method, URL: u, Status: status, RequestID: reqID, Err: err}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fail(0, fmt.Errorf("json marshal: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fail(0, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.log.Debug("request", "op", op, "method", method, "url", u, "status", resp.StatusCode,
		"request_id", reqID, "took", time.Since(start).Round(time.Millisecond))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, ErrStatus)
	}
	if out == nil {
		return nil
	}
	if c.schemas != nil && schema != "" {
		if err := c.schemas.validate(schema, raw); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformed, err))
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("%w: json unmarshal: %v", ErrMalformed, err))
	}
	if check != nil {
		if err := check(); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformed, err))
		}
	}
	return nil
}

func requestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
