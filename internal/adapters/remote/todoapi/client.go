// Package todoapi implements app.TaskStore over the /todos REST resource.
package todoapi

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

	"github.com/evanschultz/todoboard/internal/app"
	"github.com/evanschultz/todoboard/internal/domain"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "todoboard"
	// maxErrorBodyBytes bounds how much of a failed response is kept as detail.
	maxErrorBodyBytes = 4096
	maxBodyBytes      = 8 << 20
	requestIDHeader   = "X-Request-ID"
)

// Config holds client connection settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger app.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithRequestIDs sets the generator for X-Request-ID values.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.requestID = next
		}
	}
}

// Client talks to one task server.
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	userAgent string
	http      *http.Client
	log       app.Logger
	requestID func() string
}

var _ app.TaskStore = (*Client)(nil)

// New validates cfg and constructs a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	c := &Client{
		baseURL:   base,
		timeout:   cfg.Timeout,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      &http.Client{},
		log:       app.NopLogger{},
		requestID: uuid.NewString,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches every task.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	body, status, err := c.do(ctx, app.OpList, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	var payload []wireTask
	if err := decodeJSON(body, &payload); err != nil {
		return nil, &app.NetworkFailure{Op: app.OpList, StatusCode: status, Err: err}
	}
	tasks := make([]domain.Task, 0, len(payload))
	for _, item := range payload {
		task, err := item.toDomain()
		if err != nil {
			return nil, &app.NetworkFailure{Op: app.OpList, StatusCode: status, Err: err}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Get fetches one task.
func (c *Client) Get(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, &app.NetworkFailure{Op: app.OpGet, Err: domain.ErrInvalidID}
	}
	body, status, err := c.do(ctx, app.OpGet, http.MethodGet, taskPath(id), nil)
	if err != nil {
		return domain.Task{}, err
	}
	return decodeTask(app.OpGet, status, body)
}

// Create creates one task. Servers that answer with an empty body yield a
// task without an id; callers refresh to observe the assigned one.
func (c *Client) Create(ctx context.Context, title string) (domain.Task, error) {
	body, status, err := c.do(ctx, app.OpCreate, http.MethodPost, "/todos", createBody{Title: title})
	if err != nil {
		return domain.Task{}, err
	}
	if isEmptyBody(body) {
		return domain.Task{Title: title, Status: domain.StatusTodo}, nil
	}
	return decodeTask(app.OpCreate, status, body)
}

// Update replaces the task's status, description and dates.
func (c *Client) Update(ctx context.Context, id domain.TaskID, fields domain.UpdateFields) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, &app.NetworkFailure{Op: app.OpUpdate, Err: domain.ErrInvalidID}
	}
	if err := fields.Validate(); err != nil {
		return domain.Task{}, &app.NetworkFailure{Op: app.OpUpdate, Err: err}
	}
	body, status, err := c.do(ctx, app.OpUpdate, http.MethodPut, taskPath(id), newUpdateBody(fields))
	if err != nil {
		return domain.Task{}, err
	}
	if isEmptyBody(body) {
		return domain.Task{ID: id}.Apply(fields), nil
	}
	return decodeTask(app.OpUpdate, status, body)
}

// Delete removes one task.
func (c *Client) Delete(ctx context.Context, id domain.TaskID) error {
	if id == "" {
		return &app.NetworkFailure{Op: app.OpDelete, Err: domain.ErrInvalidID}
	}
	_, _, err := c.do(ctx, app.OpDelete, http.MethodDelete, taskPath(id), nil)
	return err
}

// do sends one request bounded by the client timeout and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &app.NetworkFailure{Op: op, Err: fmt.Errorf("marshal body: %w", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return nil, 0, &app.NetworkFailure{Op: op, Err: err}
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		err = withContextCause(ctx, err)
		c.log.Warn("todo api request failed", "op", op, "method", method, "path", path, "latency", latency, "request_id", requestID, "err", err)
		return nil, 0, &app.NetworkFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("todo api request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "latency", latency, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		detail := strings.TrimSpace(string(slurp))
		cause := fmt.Errorf("http error status=%d", resp.StatusCode)
		if detail != "" {
			cause = fmt.Errorf("http error status=%d body=%s", resp.StatusCode, detail)
		}
		c.log.Warn("todo api rejected request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
		return nil, resp.StatusCode, &app.NetworkFailure{Op: op, StatusCode: resp.StatusCode, Err: cause}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = withContextCause(ctx, err)
		return nil, resp.StatusCode, &app.NetworkFailure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, resp.StatusCode, nil
}

// withContextCause makes the context error visible to errors.Is when the transport hid it.
func withContextCause(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %v", ctxErr, err)
}

func taskPath(id domain.TaskID) string {
	return "/todos/" + url.PathEscape(string(id))
}

func decodeTask(op string, status int, body []byte) (domain.Task, error) {
	var payload wireTask
	if err := decodeJSON(body, &payload); err != nil {
		return domain.Task{}, &app.NetworkFailure{Op: op, StatusCode: status, Err: err}
	}
	task, err := payload.toDomain()
	if err != nil {
		return domain.Task{}, &app.NetworkFailure{Op: op, StatusCode: status, Err: err}
	}
	return task, nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isEmptyBody(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}
