package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/onlyhub/internal/auth"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

const maxCodeAttempts = 5

// AuthLogin walks the two-step admin login on the terminal.
//
// The first prompt takes the password, after which a code is emailed. Entering "r" at the code
// prompt sends a new one.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	if !r.auth.Configured() {
		return fmt.Errorf("%w: admin login needs a backend", shared.ErrBackendNotConfigured)
	}

	email := cmd.String("email")
	if email == "" {
		var err error
		if email, err = r.prompt("Email: "); err != nil {
			return err
		}
	}
	password, err := r.promptSecret("Password: ")
	if err != nil {
		return err
	}

	flow := auth.NewFlow(r.auth)
	challenge, err := flow.SubmitCredentials(ctx, email, password)
	if err != nil {
		return err
	}
	r.logger.Debug("login step one complete", "state", flow.State())
	r.writePlain("A verification code was sent to %s\n", challenge.Email)

	for attempt := 0; attempt < maxCodeAttempts; {
		code, err := r.prompt("Verification code (r to resend): ")
		if err != nil {
			return err
		}

		if strings.EqualFold(code, "r") {
			if _, err := flow.ResendCode(ctx); err != nil {
				if flow.FailedFrom() == auth.CredentialsSubmitted {
					return err
				}
				r.writePlain("✗ %v\n", err)
				continue
			}
			r.writePlain("A new code was sent to %s\n", flow.Email())
			continue
		}

		attempt++
		user, err := flow.SubmitCode(ctx, code)
		if err == nil {
			r.logger.Info("admin signed in", "email", user.Email)
			return r.writePlain("✓ Signed in as %s (%s)\n", user.Email, user.Role)
		}
		if !errors.Is(err, shared.ErrInvalidCode) {
			return err
		}
		r.writePlain("✗ %v\n", err)
	}

	flow.Reset()
	return fmt.Errorf("%w: too many invalid codes", shared.ErrAuthFailed)
}

// AuthStatus prints the cached admin session after validating it with the backend.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	if !r.auth.Configured() {
		return r.writePlain("Backend not configured; admin login unavailable (local-only mode)\n")
	}

	user, err := r.auth.Session(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Email: %s\n", user.Email)
	return r.writePlain("Role:  %s\n", user.Role)
}

// AuthLogout signs out remotely when possible and always forgets the cached session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	r.auth.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

// AuthReset sends a password reset email.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}
	if err := r.auth.ResetPassword(ctx, email); err != nil {
		return err
	}
	return r.writePlain("✓ If %s is registered, a reset link is on its way\n", email)
}
