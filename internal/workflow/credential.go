package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

var (
	// ErrBusy is returned when a step is started while another one is
	// still waiting for the server.
	ErrBusy = errors.New("workflow is busy")
	// ErrCancelled is returned by a step whose result arrived after the
	// workflow was cancelled. The result is discarded.
	ErrCancelled = errors.New("workflow was cancelled")
)

// AccountAPI issues and verifies credential-change challenges.
type AccountAPI interface {
	RequestEmailChange(ctx context.Context, newEmail string) (string, error)
	VerifyEmailChange(ctx context.Context, token, code string) (model.SessionGrant, error)
	RequestPasswordSet(ctx context.Context) (string, error)
	VerifyPasswordSet(ctx context.Context, token, code, password string) (model.SessionGrant, error)
}

// SessionManager is the process-wide session owner.
type SessionManager interface {
	Snapshot() model.Session
	Replace(ctx context.Context, session model.Session) error
	Clear(ctx context.Context) error
}

// Observer is told about a committed change. value is the new email for
// KindEmailChange and empty for KindPasswordSet.
type Observer func(kind Kind, value string)

// Option configures a CredentialChange.
type Option func(*CredentialChange)

// WithObserver registers fn to be called after a successful commit.
func WithObserver(fn Observer) Option {
	return func(c *CredentialChange) {
		c.observer = fn
	}
}

// CredentialChange drives one request → code → verify → commit cycle for a
// sensitive account mutation.
//
// Steps are strictly sequential: while a call is outstanding the workflow
// is busy and refuses new steps. Every call runs under its own cancellable
// context; Cancel aborts it and any result that still arrives is ignored.
type CredentialChange struct {
	kind     Kind
	api      AccountAPI
	sessions SessionManager
	logger   *logger.Logger
	observer Observer

	mu     sync.Mutex
	state  State
	handle requestHandle
}

// NewCredentialChange creates an idle workflow of the given kind.
func NewCredentialChange(kind Kind, api AccountAPI, sessions SessionManager, logger *logger.Logger, opts ...Option) *CredentialChange {
	c := &CredentialChange{
		kind:     kind,
		api:      api,
		sessions: sessions,
		logger:   logger,
		state:    State{Kind: kind, Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *CredentialChange) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit validates value and asks the server for a one-time code.
//
// A malformed value returns a *apierr.ValidationError without any network
// call. A server rejection returns the recorded *Failure and leaves the
// workflow idle with the value kept for editing. Submitting while a code
// is awaited drops the pending token and starts a new request.
func (c *CredentialChange) Submit(ctx context.Context, value string) error {
	if c.kind == KindEmailChange {
		value = NormalizeEmail(value)
	}

	c.mu.Lock()
	if c.state.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	next, err := Transition(c.state, SubmitValue{Value: value})
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("Credential workflow: submit rejected locally",
			"kind", c.kind.String(),
			"error", err.Error())
		return err
	}
	c.state = next
	callCtx, gen := c.handle.begin(ctx)
	c.mu.Unlock()

	c.logger.Debug("Credential workflow: requesting challenge",
		"kind", c.kind.String())

	token, err := c.request(callCtx, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.handle.finish(gen) {
		c.logger.Debug("Credential workflow: discarding late request result",
			"kind", c.kind.String())
		return ErrCancelled
	}
	if err != nil {
		c.state, _ = Transition(c.state, RequestRejected{Err: err})
		c.logger.Info("Credential workflow: challenge request failed",
			"kind", c.kind.String(),
			"error", err.Error())
		return c.state.Failure
	}

	c.state, _ = Transition(c.state, RequestAccepted{Token: token})
	if c.state.Failure != nil {
		c.logger.Warn("Credential workflow: challenge response without token",
			"kind", c.kind.String())
		return c.state.Failure
	}

	c.logger.Info("Credential workflow: awaiting code",
		"kind", c.kind.String())
	return nil
}

// SubmitCode verifies a one-time code against the pending request and, on
// success, replaces the session wholesale and notifies the observer.
//
// A code that is not exactly six digits returns a *apierr.ValidationError
// without any network call. A server rejection returns the recorded
// *Failure; the token is kept so the code can be entered again. The
// session replace runs under the same cancellable handle as the verify
// call and without holding the workflow lock.
func (c *CredentialChange) SubmitCode(ctx context.Context, code string) error {
	c.mu.Lock()
	if c.state.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	next, err := Transition(c.state, SubmitCode{Code: code})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	token, value := next.Token, next.Value
	callCtx, gen := c.handle.begin(ctx)
	c.mu.Unlock()

	grant, err := c.verify(callCtx, token, code, value)

	c.mu.Lock()
	if !c.handle.current(gen) {
		c.mu.Unlock()
		c.logger.Debug("Credential workflow: discarding late verify result",
			"kind", c.kind.String())
		return ErrCancelled
	}
	if err != nil {
		c.handle.finish(gen)
		return c.rejectVerifyLocked(err)
	}
	session := c.committedSession(grant, value)
	c.mu.Unlock()

	err = c.sessions.Replace(callCtx, session)

	c.mu.Lock()
	if !c.handle.finish(gen) {
		c.mu.Unlock()
		c.logger.Debug("Credential workflow: discarding result after cancel during session replace",
			"kind", c.kind.String())
		return ErrCancelled
	}
	if err != nil {
		c.logger.Error("Credential workflow: failed to replace session",
			"kind", c.kind.String(),
			"error", err.Error())
		return c.rejectVerifyLocked(err)
	}

	c.state, _ = Transition(c.state, Verified{})
	observer := c.observer
	notified := ""
	if c.kind == KindEmailChange {
		notified = value
	}
	c.mu.Unlock()

	c.logger.Info("Credential workflow: change committed",
		"kind", c.kind.String())

	if observer != nil {
		observer(c.kind, notified)
	}
	return nil
}

// rejectVerifyLocked records a failed verification and unlocks c.mu.
func (c *CredentialChange) rejectVerifyLocked(err error) error {
	c.state, _ = Transition(c.state, VerifyRejected{Err: err})
	failure := c.state.Failure
	c.mu.Unlock()
	c.logger.Info("Credential workflow: verification failed",
		"kind", c.kind.String(),
		"error", err.Error())
	return failure
}

// Cancel resets the workflow to idle, discarding the entered value, the
// token and the code. An outstanding call is aborted and its result
// ignored. No server call is made.
func (c *CredentialChange) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handle.abort()
	c.state, _ = Transition(c.state, Cancel{})
}

func (c *CredentialChange) request(ctx context.Context, value string) (string, error) {
	switch c.kind {
	case KindEmailChange:
		return c.api.RequestEmailChange(ctx, value)
	case KindPasswordSet:
		return c.api.RequestPasswordSet(ctx)
	default:
		return "", ErrInvalidTransition
	}
}

func (c *CredentialChange) verify(ctx context.Context, token, code, value string) (model.SessionGrant, error) {
	switch c.kind {
	case KindEmailChange:
		return c.api.VerifyEmailChange(ctx, token, code)
	case KindPasswordSet:
		return c.api.VerifyPasswordSet(ctx, token, code, value)
	default:
		return model.SessionGrant{}, ErrInvalidTransition
	}
}

// committedSession builds the whole replacement record. Fields the server
// did not return are taken from the current session; for an email change
// the verified value wins.
func (c *CredentialChange) committedSession(grant model.SessionGrant, value string) model.Session {
	next := c.sessions.Snapshot()
	if grant.Token != "" {
		next.Token = grant.Token
	}
	if grant.User.ID != "" {
		next.UserID = grant.User.ID
	}
	if grant.User.Name != "" {
		next.Name = grant.User.Name
	}
	if grant.User.Email != "" {
		next.Email = grant.User.Email
	}
	if c.kind == KindEmailChange {
		next.Email = value
	}
	return next
}
