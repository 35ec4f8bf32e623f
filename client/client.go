// Package client is a typed consumer-side wrapper around the bloglist HTTP
// API. A Client carries its own session token, so independent clients can
// act as different users within one process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/rand"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	maxRetries int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken installs the bearer token attached to every subsequent request.
// Call it once after a successful login.
func (c *Client) SetToken(token string) {
	c.token = token
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Blog struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   *User  `json:"user,omitempty"`
	// CanRemove is derived locally by EnrichWithPermissions, never sent by
	// the server.
	CanRemove bool `json:"-"`
}

type NewBlog struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes,omitempty"`
}

type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// APIError carries a non-2xx response back to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// Login exchanges credentials for a session. The caller decides whether to
// install the returned token with SetToken.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	payload := map[string]string{"username": username, "password": password}

	var session Session
	err := c.do(ctx, http.MethodPost, "/api/login", payload, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (c *Client) CreateUser(ctx context.Context, username, name, password string) (*User, error) {
	payload := map[string]string{"username": username, "name": name, "password": password}

	var user User
	err := c.do(ctx, http.MethodPost, "/api/users", payload, &user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Blogs lists every blog. Being idempotent, the request is retried with
// exponential backoff on transport errors and server faults.
func (c *Client) Blogs(ctx context.Context) ([]Blog, error) {
	var blogs []Blog
	err := c.doWithRetry(ctx, http.MethodGet, "/api/blogs", nil, &blogs)
	if err != nil {
		return nil, err
	}

	return blogs, nil
}

func (c *Client) CreateBlog(ctx context.Context, blog NewBlog) (*Blog, error) {
	var created Blog
	err := c.do(ctx, http.MethodPost, "/api/blogs", blog, &created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) UpdateLikes(ctx context.Context, id, likes int) (*Blog, error) {
	payload := map[string]int{"likes": likes}

	var updated Blog
	err := c.do(ctx, http.MethodPut, "/api/blogs/"+strconv.Itoa(id), payload, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/blogs/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return newAPIError(res)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// doWithRetry wraps do with exponential backoff and jitter. Client errors
// are returned immediately; only transport failures and 5xx responses are
// retried.
func (c *Client) doWithRetry(ctx context.Context, method, path string, payload, out any) error {
	const baseDelay = 250 * time.Millisecond

	var err error
	for attempt := 0; ; attempt++ {
		err = c.do(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return err
		}

		if attempt == c.maxRetries {
			return err
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// newAPIError extracts the server's error envelope. The error field is a
// string for most failures and a field-to-message map for validation ones.
func newAPIError(res *http.Response) *APIError {
	apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}

	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error == nil {
		return apiErr
	}

	var message string
	if err := json.Unmarshal(body.Error, &message); err == nil {
		apiErr.Message = message
		return apiErr
	}

	var fields map[string]string
	if err := json.Unmarshal(body.Error, &fields); err == nil {
		apiErr.Message = fmt.Sprintf("%v", fields)
	}

	return apiErr
}
