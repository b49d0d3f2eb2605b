package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// State is a step of the login flow.
type State int

const (
	Anonymous State = iota
	CredentialsSubmitted
	CodeSent
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case CredentialsSubmitted:
		return "credentials-submitted"
	case CodeSent:
		return "code-sent"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Flow drives a single interactive login. It is safe for concurrent use; steps are serialized.
//
// The credentials from the first step are kept in memory so the code can be resent.
type Flow struct {
	auth *Authenticator

	mu         sync.Mutex
	state      State
	failedFrom State
	email      string
	password   string
	user       *models.AdminUser
	err        error
}

func NewFlow(a *Authenticator) *Flow {
	return &Flow{auth: a, state: Anonymous}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// FailedFrom returns the step a failed flow can be retried from.
func (f *Flow) FailedFrom() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failedFrom
}

// Err returns the error that moved the flow to [Failed], if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// User returns the signed-in admin once the flow is [Authenticated].
func (f *Flow) User() *models.AdminUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

// SubmitCredentials runs the first step. It is accepted while anonymous or after a failed first step.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password string) (Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Anonymous && !f.retrying(CredentialsSubmitted) {
		return Challenge{}, f.outOfOrder("submit credentials")
	}

	f.state = CredentialsSubmitted
	challenge, err := f.auth.LoginStep1(ctx, email, password)
	if err != nil {
		f.fail(CredentialsSubmitted, err)
		return Challenge{}, err
	}

	f.email, f.password = challenge.Email, password
	f.state, f.err = CodeSent, nil
	return challenge, nil
}

// SubmitCode runs the second step. It is accepted once a code was sent, including after a rejected code.
func (f *Flow) SubmitCode(ctx context.Context, code string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != CodeSent && !f.retrying(CodeSent) {
		return nil, f.outOfOrder("submit code")
	}

	user, err := f.auth.LoginStep2(ctx, f.email, code)
	if err != nil {
		f.fail(CodeSent, err)
		return nil, err
	}

	f.password = ""
	f.user = user
	f.state, f.err = Authenticated, nil
	return user, nil
}

// ResendCode repeats the first step with the remembered credentials.
func (f *Flow) ResendCode(ctx context.Context) (Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != CodeSent && !f.retrying(CodeSent) {
		return Challenge{}, f.outOfOrder("resend code")
	}

	challenge, err := f.auth.LoginStep1(ctx, f.email, f.password)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) || errors.Is(err, shared.ErrUnauthorized) {
			f.fail(CredentialsSubmitted, err)
		} else {
			f.fail(CodeSent, err)
		}
		return Challenge{}, err
	}

	f.state, f.err = CodeSent, nil
	return challenge, nil
}

// Reset returns the flow to [Anonymous] and forgets the credentials.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state, f.failedFrom = Anonymous, Anonymous
	f.email, f.password = "", ""
	f.user, f.err = nil, nil
}

func (f *Flow) retrying(step State) bool {
	return f.state == Failed && f.failedFrom == step
}

func (f *Flow) fail(from State, err error) {
	f.state, f.failedFrom, f.err = Failed, from, err
}

func (f *Flow) outOfOrder(action string) error {
	current := f.state.String()
	if f.state == Failed {
		current += " (at " + f.failedFrom.String() + ")"
	}
	return fmt.Errorf("%w: cannot %s while %s", shared.ErrInvalidState, action, current)
}
