package auth

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Identity is the identity provider API. [*services.Client] implements it.
type Identity interface {
	SignInWithPassword(ctx context.Context, email, password string) (*services.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendOTP(ctx context.Context, email string, createUser bool) error
	VerifyOTP(ctx context.Context, email, code string) (*services.Session, error)
	User(ctx context.Context, accessToken string) (*services.User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*services.Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// AdminDirectory looks up active admins on behalf of a signed-in user.
type AdminDirectory interface {
	ActiveAdmin(ctx context.Context, accessToken, userID string) (*services.AdminRecord, error)
}

// SessionStore persists the admin session between runs. [*repositories.SessionCache] implements it.
type SessionStore interface {
	Load(ctx context.Context) (*services.Session, error)
	Save(ctx context.Context, session *services.Session) error
	Clear(ctx context.Context) error
}

// SessionBinder attaches the admin session to the backend client so later writes run as the admin.
type SessionBinder interface {
	SetSession(tok *oauth2.Token)
	ClearSession()
}

// Challenge is the outcome of a successful first step.
type Challenge struct {
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Email             string `json:"email"`
}

// Options configures an [Authenticator]. Identity, Admins and Binder are nil in local-only mode.
type Options struct {
	Identity         Identity
	Admins           AdminDirectory
	Store            SessionStore
	Binder           SessionBinder
	ResetRedirectURL string
	Logger           *log.Logger
}

// Authenticator runs the admin login against the backend.
type Authenticator struct {
	identity    Identity
	admins      AdminDirectory
	store       SessionStore
	binder      SessionBinder
	redirectURL string
	logger      *log.Logger
}

func New(opts Options) *Authenticator {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &Authenticator{
		identity:    opts.Identity,
		admins:      opts.Admins,
		store:       opts.Store,
		binder:      opts.Binder,
		redirectURL: opts.ResetRedirectURL,
		logger:      shared.WithLogger(logger, "component", "auth"),
	}
}

// NewWithClient wires an [Authenticator] to a backend client, which may be nil.
func NewWithClient(client *services.Client, store SessionStore, redirectURL string, logger *log.Logger) *Authenticator {
	opts := Options{Store: store, ResetRedirectURL: redirectURL, Logger: logger}
	if client != nil {
		opts.Identity = client
		opts.Admins = clientDirectory{client}
		opts.Binder = client
	}
	return New(opts)
}

type clientDirectory struct {
	client *services.Client
}

func (d clientDirectory) ActiveAdmin(ctx context.Context, accessToken, userID string) (*services.AdminRecord, error) {
	return d.client.As(accessToken).ActiveAdmin(ctx, userID)
}

// Configured reports whether a backend is attached.
func (a *Authenticator) Configured() bool { return a.identity != nil && a.admins != nil }

// LoginStep1 validates the credentials, gates on the admin table and sends the one-time code.
//
// The password session only proves the credentials and is signed out before the code is sent.
// A non-admin is signed out and no code is sent.
func (a *Authenticator) LoginStep1(ctx context.Context, email, password string) (Challenge, error) {
	if !a.Configured() {
		return Challenge{}, shared.ErrBackendNotConfigured
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Challenge{}, fmt.Errorf("%w: email or password incorrect", shared.ErrAuthFailed)
	}

	session, err := a.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		a.logger.Debug("password sign-in rejected", "email", email, "error", err)
		return Challenge{}, fmt.Errorf("%w: email or password incorrect", shared.ErrAuthFailed)
	}

	if _, err := a.admins.ActiveAdmin(ctx, session.AccessToken, session.User.ID); err != nil {
		a.signOut(ctx, session.AccessToken)
		a.logger.Warn("non-admin login attempt", "email", email, "error", err)
		return Challenge{}, fmt.Errorf("%w: this user is not an administrator", shared.ErrUnauthorized)
	}

	a.signOut(ctx, session.AccessToken)

	if err := a.identity.SendOTP(ctx, email, false); err != nil {
		a.logger.Error("failed to send verification code", "email", email, "error", err)
		return Challenge{}, fmt.Errorf("%w: %w", shared.ErrCodeDispatch, err)
	}

	a.logger.Info("verification code sent", "email", email)
	return Challenge{RequiresTwoFactor: true, Email: email}, nil
}

// LoginStep2 verifies the emailed code, re-checks the admin gate and establishes the session.
func (a *Authenticator) LoginStep2(ctx context.Context, email, code string) (*models.AdminUser, error) {
	if !a.Configured() {
		return nil, shared.ErrBackendNotConfigured
	}

	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: code must be exactly 6 digits", shared.ErrInvalidCode)
	}

	email = normalizeEmail(email)
	session, err := a.identity.VerifyOTP(ctx, email, code)
	if err != nil {
		a.logger.Debug("code verification rejected", "email", email, "error", err)
		return nil, fmt.Errorf("%w: invalid or expired code", shared.ErrInvalidCode)
	}

	rec, err := a.admins.ActiveAdmin(ctx, session.AccessToken, session.User.ID)
	if err != nil {
		a.signOut(ctx, session.AccessToken)
		return nil, fmt.Errorf("%w: access not authorized", shared.ErrUnauthorized)
	}

	if a.store != nil {
		if err := a.store.Save(ctx, session); err != nil {
			a.signOut(ctx, session.AccessToken)
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}
	a.bind(session)

	a.logger.Info("admin signed in", "email", session.User.Email, "role", rec.Role)
	return adminUser(session.User, rec), nil
}

// Session restores the persisted admin session, refreshing the access token when it has expired.
//
// No stored session, or one the backend no longer accepts, yields a nil user and nil error.
// An identity that is no longer an active admin is signed out with [shared.ErrUnauthorized].
func (a *Authenticator) Session(ctx context.Context) (*models.AdminUser, error) {
	if !a.Configured() {
		return nil, shared.ErrBackendNotConfigured
	}
	if a.store == nil {
		return nil, nil
	}

	session, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	session, err = a.refresh(ctx, session)
	if err != nil {
		a.logger.Warn("stored session could not be refreshed", "error", err)
		a.forget(ctx)
		return nil, nil
	}

	user, err := a.identity.User(ctx, session.AccessToken)
	if err != nil {
		if status := services.StatusCode(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
			a.forget(ctx)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	rec, err := a.admins.ActiveAdmin(ctx, session.AccessToken, user.ID)
	if err != nil {
		a.signOut(ctx, session.AccessToken)
		a.forget(ctx)
		return nil, fmt.Errorf("%w: access revoked", shared.ErrUnauthorized)
	}

	a.bind(session)
	return adminUser(*user, rec), nil
}

// IsAdmin reports whether a valid admin session exists.
func (a *Authenticator) IsAdmin(ctx context.Context) bool {
	user, err := a.Session(ctx)
	return err == nil && user != nil
}

// Logout clears the local session and then signs out of the backend on a best-effort basis.
func (a *Authenticator) Logout(ctx context.Context) {
	var session *services.Session
	if a.store != nil {
		loaded, err := a.store.Load(ctx)
		if err != nil {
			a.logger.Warn("failed to read session during logout", "error", err)
		}
		session = loaded
	}

	a.forget(ctx)

	if a.Configured() && session != nil {
		a.signOut(ctx, session.AccessToken)
	}
}

// ResetPassword emails a password recovery link.
func (a *Authenticator) ResetPassword(ctx context.Context, email string) error {
	if !a.Configured() {
		return shared.ErrBackendNotConfigured
	}

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrMissingArgument)
	}

	if err := a.identity.ResetPasswordForEmail(ctx, email, a.redirectURL); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrDispatch, err)
	}
	return nil
}

// refresh returns session unchanged while its token is valid, otherwise a refreshed and persisted session.
func (a *Authenticator) refresh(ctx context.Context, session *services.Session) (*services.Session, error) {
	current := session
	src := oauth2.ReuseTokenSource(session.Token(), tokenSourceFunc(func() (*oauth2.Token, error) {
		fresh, err := a.identity.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
		}
		current = fresh
		return fresh.Token(), nil
	}))

	if _, err := src.Token(); err != nil {
		return nil, err
	}

	if current != session && a.store != nil {
		if err := a.store.Save(ctx, current); err != nil {
			a.logger.Warn("failed to persist refreshed session", "error", err)
		}
	}
	return current, nil
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

func (a *Authenticator) bind(session *services.Session) {
	if a.binder != nil {
		a.binder.SetSession(session.Token())
	}
}

// forget drops the persisted session and the client binding.
func (a *Authenticator) forget(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Clear(ctx); err != nil {
			a.logger.Warn("failed to clear stored session", "error", err)
		}
	}
	if a.binder != nil {
		a.binder.ClearSession()
	}
}

func (a *Authenticator) signOut(ctx context.Context, accessToken string) {
	if err := a.identity.SignOut(ctx, accessToken); err != nil {
		a.logger.Warn("sign out failed", "error", err)
	}
}

func adminUser(user services.User, rec *services.AdminRecord) *models.AdminUser {
	return &models.AdminUser{ID: user.ID, Email: user.Email, Role: rec.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
