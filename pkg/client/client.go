// Package client is a Go client for the Pulse HTTP API.
package client

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

	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/google/go-querystring/query"
)

// Client talks to a Pulse server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets the session token sent with authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New returns a new client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: unsupported scheme", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Token returns the session token in use.
func (c *Client) Token() string {
	return c.token
}

// Error is a failed API request. It unwraps to the matching proto error.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// Unwrap returns the proto error for the response code, if any.
func (e *Error) Unwrap() error {
	return proto.CodeError(e.Code)
}

// CreateAccount signs up a new account.
func (c *Client) CreateAccount(ctx context.Context, req proto.CreateAccountRequest) (proto.AccountResponse, error) {
	var res proto.AccountResponse
	err := c.do(ctx, http.MethodPost, "/v1/accounts", nil, req, &res)
	return res, err
}

// Login signs in and keeps the session token for later requests.
func (c *Client) Login(ctx context.Context, email, password string) (proto.SessionResponse, error) {
	var res proto.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", nil, proto.SessionRequest{
		Email:    email,
		Password: password,
	}, &res); err != nil {
		return res, err
	}

	c.token = res.Token
	return res, nil
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (proto.AccountResponse, error) {
	var res proto.AccountResponse
	err := c.do(ctx, http.MethodGet, "/v1/accounts/me", nil, nil, &res)
	return res, err
}

// ReserveHandle reserves the first handle of the signed-in account.
func (c *Client) ReserveHandle(ctx context.Context, handle string) (proto.Reservation, error) {
	var res proto.Reservation
	err := c.do(ctx, http.MethodPost, "/v1/accounts/me/handle", nil, proto.HandleRequest{Handle: handle}, &res)
	return res, err
}

// ChangeHandle moves the signed-in account from oldHandle to newHandle. An
// empty oldHandle means the current handle.
func (c *Client) ChangeHandle(ctx context.Context, newHandle, oldHandle string) (proto.Reservation, error) {
	var res proto.Reservation
	err := c.do(ctx, http.MethodPut, "/v1/accounts/me/handle", nil, proto.HandleRequest{
		Handle:    newHandle,
		OldHandle: oldHandle,
	}, &res)
	return res, err
}

// LookupHandle returns the ID of the account holding handle.
func (c *Client) LookupHandle(ctx context.Context, handle string) (string, error) {
	var res proto.HandleLookupResponse
	if err := c.do(ctx, http.MethodGet, "/v1/handles/"+url.PathEscape(handle), nil, nil, &res); err != nil {
		return "", err
	}
	return res.AccountID, nil
}

// HandleAvailable reports whether handle is free or held by accountID.
func (c *Client) HandleAvailable(ctx context.Context, handle, accountID string) (bool, error) {
	q, err := query.Values(proto.AvailabilityOptions{AccountID: accountID})
	if err != nil {
		return false, err
	}

	var res proto.AvailabilityResponse
	if err := c.do(ctx, http.MethodGet, "/v1/handles/"+url.PathEscape(handle)+"/availability", q, nil, &res); err != nil {
		return false, err
	}
	return res.Available, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out interface{}) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return err
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decodeError(resp *http.Response) error {
	var res proto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		res.Message = http.StatusText(resp.StatusCode)
	}

	retryAfter := time.Duration(res.RetryAfter) * time.Second
	if res.Code == proto.CodeCooldownActive {
		return &proto.CooldownError{
			DaysRemaining: res.DaysRemaining,
			Remaining:     retryAfter,
			Until:         c.now().Add(retryAfter),
		}
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Code:       res.Code,
		Message:    res.Message,
		RetryAfter: retryAfter,
	}
}

// IsCode reports whether err is an API error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
