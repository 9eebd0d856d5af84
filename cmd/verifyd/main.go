package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpctx "github.com/dtroode/ats-client/internal/api/http/context"
	"github.com/dtroode/ats-client/internal/api/http/router"
	"github.com/dtroode/ats-client/internal/config"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/mailer"
	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/repository/postgres"
	redisrepo "github.com/dtroode/ats-client/internal/repository/redis"
	"github.com/dtroode/ats-client/internal/server"
	"github.com/dtroode/ats-client/internal/service"
	"github.com/dtroode/ats-client/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", "error", err, "address", cfg.Redis.Addr)
	}

	userRepo := postgres.NewUserRepository(db)
	challengeRepo := redisrepo.NewChallengeRepository(rdb, cfg.Redis.Prefix)
	tokenService := service.NewTokenService(token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL), logger)
	mail := newMailer(cfg.SMTP, logger)
	challenges := service.ChallengeConfig{TTL: cfg.Challenge.TTL, MaxAttempts: cfg.Challenge.MaxAttempts}

	authService := service.NewAuth(userRepo, challengeRepo, mail, tokenService, cfg.PublicURL, challenges, logger)
	accountService := service.NewAccount(userRepo, challengeRepo, mail, tokenService, challenges, logger)

	r := router.New(authService, accountService, tokenService, httpctx.NewManager(), cfg.HTTP.AllowedOrigins, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), logger)
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newMailer(cfg config.SMTP, logger *logger.Logger) model.Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP host is not set, mail will be logged")
		return mailer.NewLog(logger)
	}
	return mailer.NewSMTP(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
