package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const authPath = "/auth/v1"

// User is a GoTrue identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is a GoTrue token grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expiry returns when the access token expires, or the zero time when unknown.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Time{}
}

// Token converts the grant to an [oauth2.Token].
func (s *Session) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry(),
	}
	return tok.WithExtra(map[string]any{"user_id": s.User.ID, "email": s.User.Email})
}

// stamp fills ExpiresAt from ExpiresIn when the backend omitted it.
func (s *Session) stamp(now time.Time) *Session {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}
	return s
}

func (c *Client) tokenGrant(ctx context.Context, grantType string, payload any) (*Session, error) {
	req, err := jsonRequest("gotrue", http.MethodPost, authPath+"/token", payload)
	if err != nil {
		return nil, err
	}
	req.query = url.Values{"grant_type": {grantType}}

	var session Session
	if err := c.doRequest(ctx, req, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrAuthFailed)
	}
	return session.stamp(time.Now()), nil
}

// SignInWithPassword exchanges an email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.tokenGrant(ctx, "password", map[string]string{"email": email, "password": password})
}

// RefreshSession exchanges a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh token", shared.ErrRefreshFailed)
	}
	return c.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// SendOTP emails a one-time code to email. With createUser false, unknown addresses are not registered.
func (c *Client) SendOTP(ctx context.Context, email string, createUser bool) error {
	req, err := jsonRequest("gotrue", http.MethodPost, authPath+"/otp", map[string]any{
		"email":       email,
		"create_user": createUser,
	})
	if err != nil {
		return err
	}
	return c.doRequest(ctx, req, nil)
}

// VerifyOTP validates an emailed one-time code and returns the resulting session.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	req, err := jsonRequest("gotrue", http.MethodPost, authPath+"/verify", map[string]string{
		"type":  "email",
		"email": email,
		"token": code,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.doRequest(ctx, req, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil, fmt.Errorf("%w: verification returned no session", shared.ErrInvalidCode)
	}
	return session.stamp(time.Now()), nil
}

// User returns the identity behind accessToken.
func (c *Client) User(ctx context.Context, accessToken string) (*User, error) {
	var user User
	req := request{service: "gotrue", method: http.MethodGet, path: authPath + "/user"}
	if err := c.As(accessToken).doRequest(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	req := request{service: "gotrue", method: http.MethodPost, path: authPath + "/logout"}
	return c.As(accessToken).doRequest(ctx, req, nil)
}

// ResetPasswordForEmail sends a password recovery email that links back to redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	req, err := jsonRequest("gotrue", http.MethodPost, authPath+"/recover", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if redirectTo != "" {
		req.query = url.Values{"redirect_to": {redirectTo}}
	}
	return c.doRequest(ctx, req, nil)
}
