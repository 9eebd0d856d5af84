package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/dtroode/ats-client/internal/logger"
)

// ErrNoPendingRegistration is returned when a verification channel is used
// before a registration token is known.
var ErrNoPendingRegistration = errors.New("no pending registration")

// RegistrationAPI registers accounts and verifies them through either the
// link or the OTP channel.
type RegistrationAPI interface {
	Register(ctx context.Context, name, email, password string) (token string, message string, err error)
	VerifyLink(ctx context.Context, token string) (string, error)
	VerifyOTP(ctx context.Context, token, otp string) (string, error)
}

// Registration holds the token issued at registration time and offers the
// two verification channels that consume it.
//
// The channels are independent. Completing one does not disable the other;
// the server decides whether a second attempt is accepted or reported as
// already verified. Steps are sequential: while a call is outstanding new
// steps return ErrBusy, and Reset abandons the outstanding call.
type Registration struct {
	api    RegistrationAPI
	logger *logger.Logger

	mu     sync.Mutex
	token  string
	email  string
	handle requestHandle
}

// NewRegistration creates a Registration without a pending token.
func NewRegistration(api RegistrationAPI, logger *logger.Logger) *Registration {
	return &Registration{api: api, logger: logger}
}

// Register validates the input locally and creates the account.
// The returned message is the server text.
func (r *Registration) Register(ctx context.Context, name, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.handle.busy() {
		r.mu.Unlock()
		return "", ErrBusy
	}
	callCtx, gen := r.handle.begin(ctx)
	r.mu.Unlock()

	r.logger.Debug("Registration: registering account",
		"email", email)

	token, message, err := r.api.Register(callCtx, name, email, password)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.handle.finish(gen) {
		r.logger.Debug("Registration: discarding late register result",
			"email", email)
		return "", ErrCancelled
	}
	if err != nil {
		r.logger.Info("Registration: register failed",
			"email", email,
			"error", err.Error())
		return "", &Failure{Stage: RequestFailure, Err: err}
	}
	if token == "" {
		return "", &Failure{Stage: RequestFailure, Err: errMissingToken}
	}

	r.token = token
	r.email = email

	r.logger.Info("Registration: account registered, awaiting verification",
		"email", email)

	return message, nil
}

// UseToken adopts a token obtained out of band, for example from the
// verification link in an email.
func (r *Registration) UseToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}

// Token returns the pending registration token.
func (r *Registration) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// Email returns the registered email address.
func (r *Registration) Email() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.email
}

// VerifyLink completes verification through the link channel.
func (r *Registration) VerifyLink(ctx context.Context) (string, error) {
	return r.verify(ctx, "link", func(ctx context.Context, token string) (string, error) {
		return r.api.VerifyLink(ctx, token)
	})
}

// VerifyOTP completes verification through the OTP channel. A code that is
// not exactly six digits is rejected without a network call.
func (r *Registration) VerifyOTP(ctx context.Context, code string) (string, error) {
	if err := ValidateCode(code); err != nil {
		return "", err
	}
	return r.verify(ctx, "otp", func(ctx context.Context, token string) (string, error) {
		return r.api.VerifyOTP(ctx, token, code)
	})
}

func (r *Registration) verify(ctx context.Context, channel string, call func(context.Context, string) (string, error)) (string, error) {
	r.mu.Lock()
	if r.token == "" {
		r.mu.Unlock()
		return "", ErrNoPendingRegistration
	}
	if r.handle.busy() {
		r.mu.Unlock()
		return "", ErrBusy
	}
	token := r.token
	callCtx, gen := r.handle.begin(ctx)
	r.mu.Unlock()

	message, err := call(callCtx, token)

	r.mu.Lock()
	current := r.handle.finish(gen)
	r.mu.Unlock()
	if !current {
		r.logger.Debug("Registration: discarding late verification result",
			"channel", channel)
		return "", ErrCancelled
	}
	if err != nil {
		r.logger.Info("Registration: verification failed",
			"channel", channel,
			"error", err.Error())
		return "", &Failure{Stage: VerificationFailure, Err: err}
	}

	r.logger.Info("Registration: verified",
		"channel", channel)
	return message, nil
}

// Reset forgets the pending token and abandons an outstanding call; its
// result is discarded.
func (r *Registration) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handle.abort()
	r.token = ""
	r.email = ""
}
