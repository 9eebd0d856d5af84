package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/mocks"
	"github.com/dtroode/ats-client/internal/testutil"
)

func TestRegistration_BothChannelsUseSameToken(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewRegistrationAPI(t)

	api.On("Register", mock.Anything, "Ann", "ann@example.com", "s3cret-pass").
		Return("reg-token", "Registration successful. Check your email.", nil).Once()
	api.On("VerifyOTP", mock.Anything, "reg-token", "123456").Return("Email verified successfully", nil).Once()
	api.On("VerifyLink", mock.Anything, "reg-token").Return("Email already verified", nil).Once()

	r := NewRegistration(api, testutil.MakeNoopLogger())

	msg, err := r.Register(ctx, "Ann", "Ann@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Registration successful. Check your email.", msg)
	assert.Equal(t, "reg-token", r.Token())
	assert.Equal(t, "ann@example.com", r.Email())

	msg, err = r.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "Email verified successfully", msg)

	// the link channel is still offered; the server reports the outcome
	msg, err = r.VerifyLink(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Email already verified", msg)
}

func TestRegistration_LocalValidation(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		email    string
		password string
		field    string
	}{
		{name: "blank name", user: "  ", email: "ann@example.com", password: "s3cret-pass", field: "name"},
		{name: "bad email", user: "Ann", email: "not-an-email", password: "s3cret-pass", field: "email"},
		{name: "short password", user: "Ann", email: "ann@example.com", password: "123", field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := mocks.NewRegistrationAPI(t)
			r := NewRegistration(api, testutil.MakeNoopLogger())

			_, err := r.Register(context.Background(), tt.user, tt.email, tt.password)
			var valErr *apierr.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Empty(t, r.Token())
		})
	}
}

func TestRegistration_ServerRejection(t *testing.T) {
	api := mocks.NewRegistrationAPI(t)
	api.On("Register", mock.Anything, "Ann", "ann@example.com", "s3cret-pass").
		Return("", "", &apierr.ApplicationError{Status: 409, Message: "email ann@example.com is already taken"}).Once()

	r := NewRegistration(api, testutil.MakeNoopLogger())

	_, err := r.Register(context.Background(), "Ann", "ann@example.com", "s3cret-pass")
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "email ann@example.com is already taken", failure.Message())
	assert.Empty(t, r.Token())
}

func TestRegistration_VerifyWithoutToken(t *testing.T) {
	r := NewRegistration(mocks.NewRegistrationAPI(t), testutil.MakeNoopLogger())

	_, err := r.VerifyLink(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingRegistration)

	_, err = r.VerifyOTP(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestRegistration_MalformedOTPMakesNoCall(t *testing.T) {
	api := mocks.NewRegistrationAPI(t)
	r := NewRegistration(api, testutil.MakeNoopLogger())
	r.UseToken("reg-token")

	_, err := r.VerifyOTP(context.Background(), "12345")
	assert.True(t, apierr.IsValidation(err))
	api.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistration_VerifyFailureKeepsToken(t *testing.T) {
	api := mocks.NewRegistrationAPI(t)
	api.On("VerifyOTP", mock.Anything, "reg-token", "000000").
		Return("", &apierr.ApplicationError{Status: 400, Message: "Invalid OTP"}).Once()

	r := NewRegistration(api, testutil.MakeNoopLogger())
	r.UseToken("reg-token")

	_, err := r.VerifyOTP(context.Background(), "000000")
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, VerificationFailure, failure.Stage)
	assert.Equal(t, "Invalid OTP", failure.Message())
	assert.Equal(t, "reg-token", r.Token())

	r.Reset()
	assert.Empty(t, r.Token())
}

func TestRegistration_LateResponseAfterResetIsIgnored(t *testing.T) {
	api := mocks.NewRegistrationAPI(t)

	started := make(chan context.Context, 1)
	release := make(chan struct{})
	api.On("Register", mock.Anything, "Ann", "ann@example.com", "s3cret-pass").
		Run(func(args mock.Arguments) {
			started <- args.Get(0).(context.Context)
			<-release
		}).
		Return("late-token", "Registration successful. Check your email.", nil).Once()

	r := NewRegistration(api, testutil.MakeNoopLogger())

	done := make(chan error, 1)
	go func() {
		_, err := r.Register(context.Background(), "Ann", "ann@example.com", "s3cret-pass")
		done <- err
	}()

	var callCtx context.Context
	select {
	case callCtx = <-started:
	case <-time.After(time.Second):
		t.Fatal("register was not issued")
	}

	r.Reset()
	assert.ErrorIs(t, callCtx.Err(), context.Canceled)
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("register did not return")
	}
	assert.Empty(t, r.Token())
	assert.Empty(t, r.Email())
}

func TestRegistration_BusyRejectsOverlappingVerify(t *testing.T) {
	api := mocks.NewRegistrationAPI(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("VerifyOTP", mock.Anything, "reg-token", "123456").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("Email verified successfully", nil).Once()

	r := NewRegistration(api, testutil.MakeNoopLogger())
	r.UseToken("reg-token")

	done := make(chan error, 1)
	go func() {
		_, err := r.VerifyOTP(context.Background(), "123456")
		done <- err
	}()
	<-started

	_, err := r.VerifyOTP(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = r.VerifyLink(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = r.Register(context.Background(), "Ann", "ann@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	api.AssertNumberOfCalls(t, "VerifyOTP", 1)
	api.AssertNotCalled(t, "VerifyLink", mock.Anything, mock.Anything)

	// the channel is free again once the call returned
	api.On("VerifyLink", mock.Anything, "reg-token").Return("Email already verified", nil).Once()
	msg, err := r.VerifyLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Email already verified", msg)
}
