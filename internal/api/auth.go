package api

import (
	"context"
	"net/http"

	"github.com/Veraticus/contractdesk/internal/model"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, creds model.RegisterCredentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/register/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
