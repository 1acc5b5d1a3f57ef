package apiclient

import (
	"context"
	"strings"
)

// MockLogin calls POST /auth/mock-login.
func (c *Client) MockLogin(ctx context.Context, email string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LoginResult{}, validationError("Email is required")
	}
	var out LoginResult
	if err := c.post(ctx, "/auth/mock-login", map[string]string{"email": email}, &out); err != nil {
		return LoginResult{}, err
	}
	if !out.Valid || out.Token == "" {
		return LoginResult{}, &Error{Kind: KindResponse, Message: "Login was rejected"}
	}
	return out, nil
}

// VerifyToken calls POST /auth/verify.
func (c *Client) VerifyToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, validationError("Token is required")
	}
	var out struct {
		Valid bool   `json:"valid"`
		User  User   `json:"user"`
		Error string `json:"error"`
	}
	if err := c.post(ctx, "/auth/verify", map[string]string{"token": token}, &out); err != nil {
		return User{}, err
	}
	if !out.Valid {
		return User{}, &Error{Kind: KindResponse, Message: out.Error}
	}
	return out.User, nil
}

// Profile calls GET /auth/user/profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.get(ctx, "/auth/user/profile", nil, &out)
	return out, err
}
