package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dtroode/ats-client/internal/api/http/handler"
	"github.com/dtroode/ats-client/internal/api/http/middleware"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// Router wires handlers and middleware into a gin engine.
type Router struct {
	authService    handler.AuthService
	accountService handler.AccountService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	allowedOrigins []string
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	authService handler.AuthService,
	accountService handler.AccountService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	allowedOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		accountService: accountService,
		tokenService:   tokenService,
		contextManager: contextManager,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Register builds the engine. /api/auth is public, /api/account requires
// a bearer token.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), logging.Handle, cors.New(r.corsConfig()))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.registerAuthRoutes(engine.Group("/api/auth"))
	r.registerAccountRoutes(engine.Group("/api/account", authenticate.Handle))

	return engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(r.allowedOrigins) == 0 || slices.Contains(r.allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.allowedOrigins
	}
	return cfg
}

func (r *Router) registerAuthRoutes(g *gin.RouterGroup) {
	h := handler.NewAuth(r.authService, r.logger)
	g.POST("/register", h.Register)
	g.GET("/verify-email", h.VerifyEmail)
	g.POST("/verify-otp", h.VerifyOTP)
	g.POST("/login", h.Login)
}

func (r *Router) registerAccountRoutes(g *gin.RouterGroup) {
	h := handler.NewAccount(r.accountService, r.contextManager, r.logger)
	g.GET("/me", h.Me)
	g.POST("/email/change", h.RequestEmailChange)
	g.POST("/email/verify", h.VerifyEmailChange)
	g.POST("/password/request", h.RequestPasswordSet)
	g.POST("/password/verify", h.VerifyPasswordSet)
}
