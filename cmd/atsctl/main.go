package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dtroode/ats-client/internal/api/rest"
	"github.com/dtroode/ats-client/internal/config"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/session"
	filestore "github.com/dtroode/ats-client/internal/storage/file"
	redisstore "github.com/dtroode/ats-client/internal/storage/redis"
	"github.com/dtroode/ats-client/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// app holds the collaborators shared by every command.
type app struct {
	logger   *logger.Logger
	sessions *session.Manager
	client   *rest.Client
	closers  []func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	a := &app{}
	root := newRootCommand(a)
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "atsctl",
		Short:         "Manage an ATS account from the terminal",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", buildVersion, buildDate, buildCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	root.AddCommand(
		newRegisterCommand(a),
		newVerifyLinkCommand(a),
		newVerifyOTPCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newChangeEmailCommand(a),
		newSetPasswordCommand(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.NewClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
		return err
	}
	a.logger = logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	store, err := a.sessionStore(ctx, cfg.Session)
	if err != nil {
		a.logger.Error("failed to open session store", "backend", cfg.Session.Backend, "error", err)
		return err
	}

	a.sessions = session.NewManager(store, a.logger, session.WithExpiryReader(token.NewExpiry()))
	if _, err := a.sessions.Restore(ctx); err != nil {
		a.logger.Error("failed to restore session", "error", err)
		return err
	}
	a.client = rest.NewClient(cfg.APIURL, cfg.Timeout, a.sessions, a.logger)

	return nil
}

func (a *app) sessionStore(ctx context.Context, cfg config.Session) (model.SessionStore, error) {
	if cfg.Backend != "redis" {
		return filestore.NewStore(cfg.File), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, rdb.Close)
	return redisstore.NewStore(rdb, cfg.RedisKey), nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close resource", "error", err)
		}
	}
}
