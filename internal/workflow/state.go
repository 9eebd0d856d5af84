package workflow

import (
	"errors"
	"fmt"

	"github.com/dtroode/ats-client/internal/apierr"
)

// ErrInvalidTransition is returned when an event does not apply to the
// current phase.
var ErrInvalidTransition = errors.New("invalid transition")

var errMissingToken = errors.New("response did not include a token")

// Kind selects which credential a workflow changes.
type Kind int

const (
	// KindEmailChange replaces the account email address.
	KindEmailChange Kind = iota + 1
	// KindPasswordSet sets a new account password.
	KindPasswordSet
)

func (k Kind) String() string {
	switch k {
	case KindEmailChange:
		return "email_change"
	case KindPasswordSet:
		return "password_set"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phase is the position of a workflow in the confirmation protocol.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseAwaitingCode
	PhaseVerifying
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseAwaitingCode:
		return "awaiting_code"
	case PhaseVerifying:
		return "verifying"
	case PhaseCommitted:
		return "committed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Busy reports whether a network call is outstanding.
func (p Phase) Busy() bool {
	return p == PhaseRequesting || p == PhaseVerifying
}

// Stage tells which step of the protocol failed.
type Stage int

const (
	// RequestFailure means the challenge could not be issued.
	RequestFailure Stage = iota + 1
	// VerificationFailure means the code was wrong or expired.
	VerificationFailure
)

func (s Stage) String() string {
	switch s {
	case RequestFailure:
		return "request failure"
	case VerificationFailure:
		return "verification failure"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Failure is a recoverable error recorded in the state after a rejected
// network step.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message is the text to show the user: the server message when there is
// one, a generic sentence otherwise.
func (f *Failure) Message() string {
	switch f.Stage {
	case RequestFailure:
		return apierr.UserMessage(f.Err, "Could not send the verification code. Please try again.")
	case VerificationFailure:
		return apierr.UserMessage(f.Err, "Could not verify the code. Please try again.")
	default:
		return apierr.UserMessage(f.Err, "")
	}
}

// State is an immutable snapshot of a credential-change workflow.
//
// Value is the entered new value (email or password), Token is the opaque
// request token issued by the server and Code is the one-time code being
// verified. Failure holds the outcome of the last rejected step, if any.
type State struct {
	Kind    Kind
	Phase   Phase
	Value   string
	Token   string
	Code    string
	Failure *Failure
}

// Event drives a transition.
type Event interface {
	eventName() string
}

// SubmitValue starts a request with a new value.
type SubmitValue struct{ Value string }

// RequestAccepted carries the token issued by the server.
type RequestAccepted struct{ Token string }

// RequestRejected carries the reason the server refused to issue a code.
type RequestRejected struct{ Err error }

// SubmitCode starts verification of a one-time code.
type SubmitCode struct{ Code string }

// Verified reports that the server accepted the code.
type Verified struct{}

// VerifyRejected carries the reason the server refused the code.
type VerifyRejected struct{ Err error }

// Cancel abandons the workflow.
type Cancel struct{}

func (SubmitValue) eventName() string     { return "submit" }
func (RequestAccepted) eventName() string { return "request_accepted" }
func (RequestRejected) eventName() string { return "request_rejected" }
func (SubmitCode) eventName() string      { return "submit_code" }
func (Verified) eventName() string        { return "verified" }
func (VerifyRejected) eventName() string  { return "verify_rejected" }
func (Cancel) eventName() string          { return "cancel" }

// Transition applies ev to s and returns the next state.
//
// Input checks happen here: a SubmitValue or SubmitCode with malformed
// input returns s unchanged together with a *apierr.ValidationError.
// Events that do not apply to the current phase return s unchanged and an
// error wrapping ErrInvalidTransition. Rejections are not errors: they
// produce a state carrying a Failure.
func Transition(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case Cancel:
		return State{Kind: s.Kind, Phase: PhaseIdle}, nil

	case SubmitValue:
		// A new request from AwaitingCode abandons the pending token.
		if s.Phase != PhaseIdle && s.Phase != PhaseAwaitingCode && s.Phase != PhaseCommitted {
			return s, invalid(s, ev)
		}
		if err := validateValue(s.Kind, e.Value); err != nil {
			return s, err
		}
		return State{Kind: s.Kind, Phase: PhaseRequesting, Value: e.Value}, nil

	case RequestAccepted:
		if s.Phase != PhaseRequesting {
			return s, invalid(s, ev)
		}
		if e.Token == "" {
			return State{
				Kind:    s.Kind,
				Phase:   PhaseIdle,
				Value:   s.Value,
				Failure: &Failure{Stage: RequestFailure, Err: &apierr.TransportError{Op: "request change", Err: errMissingToken}},
			}, nil
		}
		return State{Kind: s.Kind, Phase: PhaseAwaitingCode, Value: s.Value, Token: e.Token}, nil

	case RequestRejected:
		if s.Phase != PhaseRequesting {
			return s, invalid(s, ev)
		}
		return State{
			Kind:    s.Kind,
			Phase:   PhaseIdle,
			Value:   s.Value,
			Failure: &Failure{Stage: RequestFailure, Err: e.Err},
		}, nil

	case SubmitCode:
		if s.Phase != PhaseAwaitingCode {
			return s, invalid(s, ev)
		}
		if err := ValidateCode(e.Code); err != nil {
			return s, err
		}
		return State{Kind: s.Kind, Phase: PhaseVerifying, Value: s.Value, Token: s.Token, Code: e.Code}, nil

	case Verified:
		if s.Phase != PhaseVerifying {
			return s, invalid(s, ev)
		}
		return State{Kind: s.Kind, Phase: PhaseCommitted, Value: s.Value}, nil

	case VerifyRejected:
		if s.Phase != PhaseVerifying {
			return s, invalid(s, ev)
		}
		return State{
			Kind:    s.Kind,
			Phase:   PhaseAwaitingCode,
			Value:   s.Value,
			Token:   s.Token,
			Failure: &Failure{Stage: VerificationFailure, Err: e.Err},
		}, nil
	}

	return s, invalid(s, ev)
}

func invalid(s State, ev Event) error {
	name := "unknown"
	if ev != nil {
		name = ev.eventName()
	}
	return fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, name, s.Phase)
}

func validateValue(kind Kind, value string) error {
	switch kind {
	case KindEmailChange:
		return ValidateEmail(value)
	case KindPasswordSet:
		return ValidatePassword(value)
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidTransition, kind)
	}
}
