package rest

import (
	"context"
	"net/http"

	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/workflow"
)

var (
	_ workflow.AccountAPI      = (*Client)(nil)
	_ workflow.RegistrationAPI = (*Client)(nil)
	_ workflow.LoginAPI        = (*Client)(nil)
)

type tokenBody struct {
	Token string `json:"token"`
}

type tokenMessageBody struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Register creates an account and returns the verification token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, string, error) {
	var out tokenMessageBody
	err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	return out.Token, out.Message, err
}

// VerifyLink confirms a registration through the emailed link token.
func (c *Client) VerifyLink(ctx context.Context, token string) (string, error) {
	var out messageBody
	err := c.do(ctx, "verify link", http.MethodGet, "/api/auth/verify-email?token="+escape(token), nil, &out)
	return out.Message, err
}

// VerifyOTP confirms a registration with the emailed code.
func (c *Client) VerifyOTP(ctx context.Context, token, otp string) (string, error) {
	var out messageBody
	err := c.do(ctx, "verify otp", http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"token": token,
		"otp":   otp,
	}, &out)
	return out.Message, err
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (model.SessionGrant, error) {
	var out model.SessionGrant
	err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Profile returns the account behind the current bearer token.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, "profile", http.MethodGet, "/api/account/me", nil, &out)
	return out, err
}

// RequestEmailChange asks the server to send a code to newEmail.
func (c *Client) RequestEmailChange(ctx context.Context, newEmail string) (string, error) {
	var out tokenBody
	err := c.do(ctx, "request email change", http.MethodPost, "/api/account/email/change", map[string]string{
		"newEmail": newEmail,
	}, &out)
	return out.Token, err
}

// VerifyEmailChange confirms the email change and returns the new session.
func (c *Client) VerifyEmailChange(ctx context.Context, token, code string) (model.SessionGrant, error) {
	var out model.SessionGrant
	err := c.do(ctx, "verify email change", http.MethodPost, "/api/account/email/verify", map[string]string{
		"token": token,
		"code":  code,
	}, &out)
	return out, err
}

// RequestPasswordSet asks the server to send a code to the account email.
func (c *Client) RequestPasswordSet(ctx context.Context) (string, error) {
	var out tokenBody
	err := c.do(ctx, "request password set", http.MethodPost, "/api/account/password/request", struct{}{}, &out)
	return out.Token, err
}

// VerifyPasswordSet confirms the code and stores the new password.
func (c *Client) VerifyPasswordSet(ctx context.Context, token, code, password string) (model.SessionGrant, error) {
	var out model.SessionGrant
	err := c.do(ctx, "verify password set", http.MethodPost, "/api/account/password/verify", map[string]string{
		"token":    token,
		"code":     code,
		"password": password,
	}, &out)
	return out, err
}
