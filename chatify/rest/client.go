package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chatify/chatify-sdk-go/chatify"
)

// Client provides REST API access to a Chatify server. It covers the
// collaborator surface the sync client needs: session bootstrap and
// history hydration. Room and membership administration are separate
// concerns and not exposed here.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new REST API client.
// baseURL should be the base URL of the API, e.g. "http://localhost:8080/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetToken sets the bearer token for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates with existing credentials. The returned token is
// also retained on the client for subsequent authenticated requests.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp, false); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Register creates a new account and returns the session token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", req, &resp, false); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// GetMessages retrieves one page of message history for a room.
// Pages are served newest-first; page 0 holds the most recent messages.
func (c *Client) GetMessages(ctx context.Context, roomID string, page, size int) (*MessagePage, error) {
	path := fmt.Sprintf("/messages/%s?page=%d&size=%d", url.PathEscape(roomID), page, size)
	var resp MessagePage
	if err := c.get(ctx, path, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoomMessages returns the most recent history page for a room,
// newest-first. This satisfies the sync client's HistoryProvider.
func (c *Client) RoomMessages(ctx context.Context, roomID string) ([]chatify.Message, error) {
	page, err := c.GetMessages(ctx, roomID, 0, 50)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

var _ chatify.HistoryProvider = (*Client)(nil)

// Helper methods

func (c *Client) post(ctx context.Context, path string, body, dest any, requireAuth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any, requireAuth bool) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("http error: %s (status %d)", string(body), resp.StatusCode)
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
