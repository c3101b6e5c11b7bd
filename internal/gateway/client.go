// Package gateway is the authenticated HTTP client for the warchest
// backend REST API. It owns the bearer-token lifecycle: the token is read
// from the local store at construction, held in memory, written back on
// every successful login or register, and cleared on logout or any 401.
package gateway

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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soworklabs/warchest/internal/store"
)

// ErrAuthExpired signals that the bearer token was rejected. The client has
// already cleared the stored session; the caller must re-authenticate.
var ErrAuthExpired = errors.New("gateway: session expired, please log in again")

// RequestError is a non-401 HTTP failure carrying the server's message.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("gateway: request failed (%d): %s", e.Status, e.Message)
}

// Config holds gateway construction options.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api".
	BaseURL string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// Client performs authenticated requests against a fixed base URL.
// Safe for concurrent use; the token is read once per request under lock.
type Client struct {
	baseURL    string
	httpClient *http.Client
	local      *store.Local
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// NewClient builds a Client and loads any persisted session token.
func NewClient(cfg Config, local *store.Local, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	token, err := local.GetString(store.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("gateway: load session token: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		local:      local,
		logger:     logger,
		token:      token,
	}, nil
}

// Authenticated reports whether a bearer token is currently held.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// request issues one HTTP call. A nil body sends no payload; a non-nil out
// receives the decoded JSON response.
func (c *Client) request(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Read the token at call time, never cached across the request.
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("bearer token rejected, clearing session",
			zap.String("endpoint", endpoint))
		c.clearSession()
		return ErrAuthExpired
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "請求失敗"
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.Message != "" {
			msg = errBody.Message
		}
		return &RequestError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("gateway: decode response: %w", err)
		}
	}
	return nil
}

// AuthResponse is the token/user pair returned by the auth endpoints.
type AuthResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Register creates an account and opens a session.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	if err := c.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login opens a session with email/password credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := c.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, googleToken string) (*AuthResponse, error) {
	body := map[string]string{"token": googleToken}
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/auth/google", body, &resp); err != nil {
		return nil, err
	}
	if err := c.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout discards the session. Purely local; no network call.
func (c *Client) Logout() {
	c.clearSession()
}

func (c *Client) storeSession(resp *AuthResponse) error {
	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	if err := c.local.PutString(store.KeyAuthToken, resp.Token); err != nil {
		return err
	}
	return c.local.PutString(store.KeyUserInfo, string(resp.User))
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	if err := c.local.Delete(store.KeyAuthToken); err != nil {
		c.logger.Warn("failed to clear stored token", zap.Error(err))
	}
	if err := c.local.Delete(store.KeyUserInfo); err != nil {
		c.logger.Warn("failed to clear stored user info", zap.Error(err))
	}
}

func queryParam(key, value string) string {
	if value == "" {
		return ""
	}
	return "?" + key + "=" + url.QueryEscape(value)
}
