package apiclient

import (
	"context"
	"time"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents the response from login/refresh endpoints.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExpiresInDuration returns ExpiresIn as a time.Duration.
func (t *TokenResponse) ExpiresInDuration() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

// Identity is the subject and role carried by the client's token.
type Identity struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// Login authenticates with the server and returns tokens.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return createResource[TokenResponse](ctx, c, "/api/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	})
}

// RefreshToken refreshes the access token using the refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req := struct {
		RefreshToken string `json:"refresh_token"`
	}{
		RefreshToken: refreshToken,
	}
	return createResource[TokenResponse](ctx, c, "/api/v1/auth/refresh", req)
}

// Me returns the identity of the client's token.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	return getResource[Identity](ctx, c, "/api/v1/auth/me")
}
