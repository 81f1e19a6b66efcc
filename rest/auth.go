package rest

import (
	"context"
	"net/http"
	"strings"

	"moviehub/auth"
	"moviehub/errs"
	"moviehub/user"
)

const (
	msgLoginFailed          = "Login failed"
	msgRegistrationFailed   = "Registration failed"
	msgProfileUpdateFailed  = "Profile update failed"
	msgPasswordChangeFailed = "Password change failed"
	msgForgotFailed         = "Failed to send reset email"
	msgResetFailed          = "Password reset failed"
	msgMeFailed             = "Failed to load account"
	msgResendFailed         = "Failed to resend verification email"
	msgVerifyFailed         = "Email verification failed"
)

type authData struct {
	User                *user.User `json:"user"`
	Token               string     `json:"token"`
	TokenType           string     `json:"token_type"`
	NeedsPasswordChange bool       `json:"needs_password_change"`
}

// authResponse accepts the account fields under data or at the top level.
type authResponse struct {
	envelope
	authData
	Data *authData `json:"data"`
}

func (r authResponse) payload() authData {
	if r.Data != nil {
		return *r.Data
	}
	return r.authData
}

func (r authResponse) user(fallback string) (user.User, error) {
	if err := r.check(fallback); err != nil {
		return user.User{}, err
	}
	u := r.payload().User
	if u == nil {
		return user.User{}, errs.Errorf(errs.EPROTOCOL, "account response has no user")
	}
	return *u, nil
}

type forgotRequest struct {
	Email string `json:"email"`
}

func (c *Client) Login(ctx context.Context, cr user.Credentials) (auth.Grant, error) {
	return c.grant(ctx, "/auth/login", cr, msgLoginFailed)
}

func (c *Client) Register(ctx context.Context, r user.Registration) (auth.Grant, error) {
	return c.grant(ctx, "/auth/register", r, msgRegistrationFailed)
}

func (c *Client) grant(ctx context.Context, path string, body interface{}, fallback string) (auth.Grant, error) {
	var resp authResponse
	if err := c.send(ctx, http.MethodPost, path, body, &resp); err != nil {
		return auth.Grant{}, err
	}
	u, err := resp.user(fallback)
	if err != nil {
		return auth.Grant{}, err
	}
	data := resp.payload()
	return auth.Grant{
		User:                u,
		Token:               data.Token,
		NeedsPasswordChange: data.NeedsPasswordChange,
	}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var resp envelope
	if err := c.send(ctx, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		return err
	}
	return resp.check("Logout failed")
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var resp authResponse
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return user.User{}, err
	}
	return resp.user(msgMeFailed)
}

func (c *Client) UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, error) {
	var resp authResponse
	if err := c.send(ctx, http.MethodPut, "/auth/profile", p, &resp); err != nil {
		return user.User{}, err
	}
	return resp.user(msgProfileUpdateFailed)
}

func (c *Client) ChangePassword(ctx context.Context, p user.PasswordChange) error {
	return c.post(ctx, "/auth/change-password", p, msgPasswordChangeFailed)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", forgotRequest{Email: email}, msgForgotFailed)
}

func (c *Client) ResetPassword(ctx context.Context, p user.PasswordReset) error {
	return c.post(ctx, "/auth/reset-password", p, msgResetFailed)
}

// ResendVerification asks the backend to mail a new verification link.
func (c *Client) ResendVerification(ctx context.Context) error {
	return c.post(ctx, "/auth/email/verification-notification", nil, msgResendFailed)
}

// VerifyEmail follows the signed link from a verification email.
func (c *Client) VerifyEmail(ctx context.Context, link string) error {
	path, err := c.relative(link)
	if err != nil {
		return err
	}
	var resp envelope
	if err := c.send(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return err
	}
	return resp.check(msgVerifyFailed)
}

// relative turns link into a path under the API base. Links to any other
// host are refused so the bearer token is only sent to the API.
func (c *Client) relative(link string) (string, error) {
	link = strings.TrimSpace(link)
	switch {
	case strings.HasPrefix(link, c.baseURL+"/"):
		return strings.TrimPrefix(link, c.baseURL), nil
	case strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//"):
		return link, nil
	}
	return "", errs.Errorf(errs.EINVALID, "verification link does not point at the movie API")
}

func (c *Client) post(ctx context.Context, path string, body interface{}, fallback string) error {
	var resp envelope
	if err := c.send(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	return resp.check(fallback)
}
