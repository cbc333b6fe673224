package remote

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

	"inspectline/internal/domain"
)

// Client talks to the remote task store, asset catalog and user directory.
// No credentials are attached to requests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses. Code is filled in when the body carries
// the {"error":{"code":...}} envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Conflict reports whether the remote side refused the write as a conflict.
func (e *APIError) Conflict() bool { return e.StatusCode == http.StatusConflict }

// NotFound reports whether the remote side answered 404.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// ListTasks returns the full task collection.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var resp []domain.Task
	err := c.do(ctx, http.MethodGet, "tasks", nil, &resp)
	return resp, err
}

// CreateTask persists a draft and returns the stored record with its id and createdAt.
func (c *Client) CreateTask(ctx context.Context, draft domain.Task) (domain.Task, error) {
	var resp domain.Task
	err := c.do(ctx, http.MethodPost, "tasks", draft, &resp)
	return resp, err
}

// ReplaceTask overwrites the stored task with id.
func (c *Client) ReplaceTask(ctx context.Context, id string, t domain.Task) (domain.Task, error) {
	var resp domain.Task
	err := c.do(ctx, http.MethodPut, "tasks/"+url.PathEscape(id), t, &resp)
	return resp, err
}

// DeleteTask removes the stored task with id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tasks/"+url.PathEscape(id), nil, nil)
}

// ListBASets returns the breathing-apparatus catalog.
func (c *Client) ListBASets(ctx context.Context) ([]domain.Asset, error) {
	var resp []domain.Asset
	err := c.do(ctx, http.MethodGet, "baSets", nil, &resp)
	return resp, err
}

// ListSafetyKits returns the safety kit catalog.
func (c *Client) ListSafetyKits(ctx context.Context) ([]domain.Asset, error) {
	var resp []domain.Asset
	err := c.do(ctx, http.MethodGet, "safetyKits", nil, &resp)
	return resp, err
}

// ListUsers returns every account of the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp []domain.User
	err := c.do(ctx, http.MethodGet, "users", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, b)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
