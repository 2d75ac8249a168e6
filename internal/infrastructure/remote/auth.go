package remote

import (
	"context"
	"net/http"
	"time"
)

// Session is a successful login
type Session struct {
	AccessToken string    `json:"access_token" validate:"required"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}
	var out Session
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "auth/login", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WithToken returns a copy of the client that sends token as its bearer token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}
