package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/workflow"
)

var errNotSignedIn = errors.New("not signed in, run atsctl login first")

// userMessage is the line printed for a failed command.
func userMessage(err error) string {
	var f *workflow.Failure
	if errors.As(err, &f) {
		return f.Message()
	}
	return apierr.UserMessage(err, err.Error())
}

func newRegisterCommand(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and verify it with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			out := cmd.OutOrStdout()

			var err error
			if name, err = p.orAsk(name, "Name"); err != nil {
				return err
			}
			if email, err = p.orAsk(email, "Email"); err != nil {
				return err
			}
			if password, err = p.orAsk(password, "Password"); err != nil {
				return err
			}

			reg := workflow.NewRegistration(a.client, a.logger)
			message, err := reg.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, message)
			fmt.Fprintf(out, "Verification token: %s\n", reg.Token())
			fmt.Fprintln(out, "Open the emailed link, or enter the code below.")

			return verifyWithCode(cmd.Context(), p, out, reg)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

// verifyWithCode prompts for registration codes until one is accepted or
// the answer is blank.
func verifyWithCode(ctx context.Context, p *prompter, out io.Writer, reg *workflow.Registration) error {
	for {
		code, err := p.ask("Code (blank to skip)")
		if err != nil {
			return err
		}
		if code == "" {
			fmt.Fprintf(out, "Verify later with: atsctl verify-otp %s\n", reg.Token())
			return nil
		}

		message, err := reg.VerifyOTP(ctx, code)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(out, userMessage(err))
			continue
		}
		fmt.Fprintln(out, message)
		return nil
	}
}

func newVerifyLinkCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-link TOKEN",
		Short: "Verify a registration with the token from the emailed link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := workflow.NewRegistration(a.client, a.logger)
			reg.UseToken(args[0])

			message, err := reg.VerifyLink(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newVerifyOTPCommand(a *app) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "verify-otp TOKEN",
		Short: "Verify a registration with the emailed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			reg := workflow.NewRegistration(a.client, a.logger)
			reg.UseToken(args[0])

			if code == "" {
				return verifyWithCode(cmd.Context(), p, cmd.OutOrStdout(), reg)
			}
			message, err := reg.VerifyOTP(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "6-digit code (prompted when empty)")
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			var err error
			if email, err = p.orAsk(email, "Email"); err != nil {
				return err
			}
			password, err := p.askRequired("Password")
			if err != nil {
				return err
			}

			s, err := workflow.NewAuth(a.client, a.sessions, a.logger).Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", s.Name, s.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := workflow.NewAuth(a.client, a.sessions, a.logger).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sessions.Authenticated() {
				return errNotSignedIn
			}
			profile, err := a.client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nid: %s\n", profile.Name, profile.Email, profile.ID)
			return nil
		},
	}
}

func newChangeEmailCommand(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "change-email",
		Short: "Change the account email after confirming a code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCredentialChange(cmd, workflow.KindEmailChange, email, "New email")
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "new email address")
	return cmd
}

func newSetPasswordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-password",
		Short: "Set the account password after confirming a code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCredentialChange(cmd, workflow.KindPasswordSet, "", "New password")
		},
	}
}

// runCredentialChange walks the user through request, code entry and
// commit. A blank code or an interrupt cancels the workflow.
func (a *app) runCredentialChange(cmd *cobra.Command, kind workflow.Kind, value, label string) error {
	if !a.sessions.Authenticated() {
		return errNotSignedIn
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	wf := workflow.NewCredentialChange(kind, a.client, a.sessions, a.logger,
		workflow.WithObserver(func(changed workflow.Kind, email string) {
			if changed == workflow.KindEmailChange {
				fmt.Fprintf(out, "Email changed to %s.\n", email)
				return
			}
			fmt.Fprintln(out, "Password set.")
		}))
	stop := context.AfterFunc(ctx, wf.Cancel)
	defer stop()

	for {
		var err error
		if value, err = p.orAsk(value, label); err != nil {
			return err
		}
		err = wf.Submit(ctx, value)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(out, userMessage(err))
		value = ""
	}

	fmt.Fprintln(out, "A 6-digit code was sent to your email.")
	for {
		code, err := p.ask("Code (blank to cancel)")
		if err != nil {
			wf.Cancel()
			return err
		}
		if code == "" {
			wf.Cancel()
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		err = wf.SubmitCode(ctx, code)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(out, userMessage(err))
	}
}
