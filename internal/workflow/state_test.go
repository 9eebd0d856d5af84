package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/ats-client/internal/apierr"
)

func TestTransition_HappyPath(t *testing.T) {
	s := State{Kind: KindEmailChange}

	s, err := Transition(s, SubmitValue{Value: "user@example.com"})
	require.NoError(t, err)
	assert.Equal(t, PhaseRequesting, s.Phase)
	assert.Equal(t, "user@example.com", s.Value)

	s, err = Transition(s, RequestAccepted{Token: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingCode, s.Phase)
	assert.Equal(t, "abc123", s.Token)

	s, err = Transition(s, SubmitCode{Code: "482913"})
	require.NoError(t, err)
	assert.Equal(t, PhaseVerifying, s.Phase)
	assert.Equal(t, "abc123", s.Token)
	assert.Equal(t, "482913", s.Code)

	s, err = Transition(s, Verified{})
	require.NoError(t, err)
	assert.Equal(t, PhaseCommitted, s.Phase)
	assert.Equal(t, "user@example.com", s.Value)
	assert.Empty(t, s.Token)
	assert.Empty(t, s.Code)
	assert.Nil(t, s.Failure)
}

func TestTransition_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		value string
	}{
		{name: "no at sign", kind: KindEmailChange, value: "not-an-email"},
		{name: "empty", kind: KindEmailChange, value: ""},
		{name: "display name", kind: KindEmailChange, value: "Ann <ann@example.com>"},
		{name: "missing domain dot", kind: KindEmailChange, value: "ann@localhost"},
		{name: "missing local part", kind: KindEmailChange, value: "@example.com"},
		{name: "spaces", kind: KindEmailChange, value: "ann smith@example.com"},
		{name: "short password", kind: KindPasswordSet, value: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := State{Kind: tt.kind, Phase: PhaseIdle}

			next, err := Transition(start, SubmitValue{Value: tt.value})
			require.Error(t, err)
			assert.True(t, apierr.IsValidation(err))
			assert.Equal(t, start, next)
		})
	}
}

func TestTransition_RequestRejectedKeepsValue(t *testing.T) {
	s := State{Kind: KindEmailChange, Phase: PhaseRequesting, Value: "user@example.com"}
	reason := &apierr.ApplicationError{Status: 409, Message: "Email already in use"}

	next, err := Transition(s, RequestRejected{Err: reason})
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, next.Phase)
	assert.Equal(t, "user@example.com", next.Value)
	require.NotNil(t, next.Failure)
	assert.Equal(t, RequestFailure, next.Failure.Stage)
	assert.Equal(t, "Email already in use", next.Failure.Message())
}

func TestTransition_RequestAcceptedWithoutToken(t *testing.T) {
	s := State{Kind: KindEmailChange, Phase: PhaseRequesting, Value: "user@example.com"}

	next, err := Transition(s, RequestAccepted{})
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, next.Phase)
	assert.Empty(t, next.Token)
	require.NotNil(t, next.Failure)

	var transportErr *apierr.TransportError
	assert.True(t, errors.As(next.Failure, &transportErr))
}

func TestTransition_SubmitCodeValidation(t *testing.T) {
	start := State{Kind: KindEmailChange, Phase: PhaseAwaitingCode, Value: "user@example.com", Token: "abc123"}

	for _, code := range []string{"", "12345", "1234567", "12a456", "１２３４５６", " 12345"} {
		t.Run(code, func(t *testing.T) {
			next, err := Transition(start, SubmitCode{Code: code})
			require.Error(t, err)
			assert.True(t, apierr.IsValidation(err))
			assert.Equal(t, start, next)
		})
	}
}

func TestTransition_VerifyRejectedKeepsToken(t *testing.T) {
	s := State{Kind: KindEmailChange, Phase: PhaseVerifying, Value: "user@example.com", Token: "abc123", Code: "000000"}

	next, err := Transition(s, VerifyRejected{Err: &apierr.ApplicationError{Status: 400, Message: "Invalid OTP"}})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingCode, next.Phase)
	assert.Equal(t, "abc123", next.Token)
	assert.Empty(t, next.Code)
	require.NotNil(t, next.Failure)
	assert.Equal(t, VerificationFailure, next.Failure.Stage)
	assert.Equal(t, "Invalid OTP", next.Failure.Message())
}

func TestTransition_CancelFromAnyPhase(t *testing.T) {
	for _, phase := range []Phase{PhaseIdle, PhaseRequesting, PhaseAwaitingCode, PhaseVerifying, PhaseCommitted} {
		t.Run(phase.String(), func(t *testing.T) {
			s := State{Kind: KindPasswordSet, Phase: phase, Value: "v", Token: "t", Code: "123456", Failure: &Failure{Stage: RequestFailure}}

			next, err := Transition(s, Cancel{})
			require.NoError(t, err)
			assert.Equal(t, State{Kind: KindPasswordSet, Phase: PhaseIdle}, next)
		})
	}
}

func TestTransition_InvalidEvents(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		event Event
	}{
		{name: "accept while idle", phase: PhaseIdle, event: RequestAccepted{Token: "x"}},
		{name: "code while idle", phase: PhaseIdle, event: SubmitCode{Code: "123456"}},
		{name: "submit while verifying", phase: PhaseVerifying, event: SubmitValue{Value: "user@example.com"}},
		{name: "verified while awaiting code", phase: PhaseAwaitingCode, event: Verified{}},
		{name: "reject verify while requesting", phase: PhaseRequesting, event: VerifyRejected{}},
		{name: "reject request while verifying", phase: PhaseVerifying, event: RequestRejected{}},
		{name: "nil event", phase: PhaseIdle, event: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Kind: KindEmailChange, Phase: tt.phase}

			next, err := Transition(s, tt.event)
			require.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, s, next)
		})
	}
}

func TestTransition_SubmitAfterCommitStartsNewRequest(t *testing.T) {
	s := State{Kind: KindEmailChange, Phase: PhaseCommitted, Value: "old@example.com"}

	next, err := Transition(s, SubmitValue{Value: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, PhaseRequesting, next.Phase)
	assert.Equal(t, "new@example.com", next.Value)
}

func TestTransition_ResubmitWhileAwaitingCodeDropsToken(t *testing.T) {
	s := State{
		Kind:    KindEmailChange,
		Phase:   PhaseAwaitingCode,
		Value:   "first@example.com",
		Token:   "abc123",
		Failure: &Failure{Stage: VerificationFailure},
	}

	next, err := Transition(s, SubmitValue{Value: "second@example.com"})
	require.NoError(t, err)
	assert.Equal(t, State{Kind: KindEmailChange, Phase: PhaseRequesting, Value: "second@example.com"}, next)
}

func TestFailure_MessageFallbacks(t *testing.T) {
	transport := &apierr.TransportError{Op: "x", Err: errors.New("dial tcp: refused")}

	assert.Equal(t, "Could not send the verification code. Please try again.", (&Failure{Stage: RequestFailure, Err: transport}).Message())
	assert.Equal(t, "Could not verify the code. Please try again.", (&Failure{Stage: VerificationFailure, Err: transport}).Message())
	assert.ErrorIs(t, &Failure{Stage: RequestFailure, Err: transport}, transport)
}
