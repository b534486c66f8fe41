package foodshop

import "context"

// LoginRequest carries the credential payload for auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the token plus user profile issued on login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserData `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.post(ctx, "auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current bearer token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "auth/logout", nil, nil)
}
