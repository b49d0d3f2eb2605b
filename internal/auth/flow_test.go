package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/onlyhub/internal/shared"
)

func TestFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)

		if flow.State() != Anonymous {
			t.Fatalf("expected anonymous, got %s", flow.State())
		}
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}
		if flow.State() != CodeSent || flow.Email() != adminEmail {
			t.Fatalf("expected code-sent for %s, got %s for %s", adminEmail, flow.State(), flow.Email())
		}

		user, err := flow.SubmitCode(ctx, validCode)
		if err != nil {
			t.Fatalf("SubmitCode failed: %v", err)
		}
		if flow.State() != Authenticated || flow.User() != user {
			t.Errorf("expected authenticated with user, got %s", flow.State())
		}
	})

	t.Run("code before credentials", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)

		_, err := flow.SubmitCode(ctx, validCode)
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if flow.State() != Anonymous {
			t.Errorf("expected state to be unchanged, got %s", flow.State())
		}
		if f.identity.called("verify") != 0 {
			t.Error("expected no verification call")
		}
	})

	t.Run("resend before credentials", func(t *testing.T) {
		flow := NewFlow(newFixture(t).auth)
		if _, err := flow.ResendCode(ctx); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("credentials after code sent", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
		if flow.State() != CodeSent {
			t.Errorf("expected code-sent, got %s", flow.State())
		}
	})

	t.Run("retry after bad password", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)

		if _, err := flow.SubmitCredentials(ctx, adminEmail, "wrong"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if flow.State() != Failed || flow.FailedFrom() != CredentialsSubmitted {
			t.Fatalf("expected failed at credentials, got %s at %s", flow.State(), flow.FailedFrom())
		}
		if !errors.Is(flow.Err(), shared.ErrAuthFailed) {
			t.Errorf("expected the failure to be kept, got %v", flow.Err())
		}
		if _, err := flow.SubmitCode(ctx, validCode); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}

		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if flow.State() != CodeSent || flow.Err() != nil {
			t.Errorf("expected code-sent without error, got %s, %v", flow.State(), flow.Err())
		}
	})

	t.Run("retry after bad code", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}

		if _, err := flow.SubmitCode(ctx, "000000"); !errors.Is(err, shared.ErrInvalidCode) {
			t.Fatalf("expected ErrInvalidCode, got %v", err)
		}
		if flow.State() != Failed || flow.FailedFrom() != CodeSent {
			t.Fatalf("expected failed at code-sent, got %s at %s", flow.State(), flow.FailedFrom())
		}
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}

		if _, err := flow.SubmitCode(ctx, validCode); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if flow.State() != Authenticated {
			t.Errorf("expected authenticated, got %s", flow.State())
		}
	})

	t.Run("resend code", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}
		if _, err := flow.SubmitCode(ctx, "999999"); err == nil {
			t.Fatal("expected the wrong code to fail")
		}

		if _, err := flow.ResendCode(ctx); err != nil {
			t.Fatalf("ResendCode failed: %v", err)
		}
		if f.identity.called("otp") != 2 {
			t.Errorf("expected two codes sent, got %d", f.identity.called("otp"))
		}
		if flow.State() != CodeSent {
			t.Errorf("expected code-sent, got %s", flow.State())
		}
	})

	t.Run("resend after revocation restarts at credentials", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}
		f.admins.revoke(adminID)

		if _, err := flow.ResendCode(ctx); !errors.Is(err, shared.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if flow.FailedFrom() != CredentialsSubmitted {
			t.Errorf("expected failed at credentials, got %s", flow.FailedFrom())
		}
	})

	t.Run("authenticated is terminal until reset", func(t *testing.T) {
		f := newFixture(t)
		flow := NewFlow(f.auth)
		if _, err := flow.SubmitCredentials(ctx, adminEmail, adminPassword); err != nil {
			t.Fatalf("SubmitCredentials failed: %v", err)
		}
		if _, err := flow.SubmitCode(ctx, validCode); err != nil {
			t.Fatalf("SubmitCode failed: %v", err)
		}
		if _, err := flow.SubmitCode(ctx, validCode); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}

		flow.Reset()
		if flow.State() != Anonymous || flow.User() != nil || flow.Email() != "" {
			t.Errorf("expected a clean flow after reset, got %s", flow.State())
		}
	})
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Anonymous:            "anonymous",
		CredentialsSubmitted: "credentials-submitted",
		CodeSent:             "code-sent",
		Authenticated:        "authenticated",
		Failed:               "failed",
		State(42):            "state(42)",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
