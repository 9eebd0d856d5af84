package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/service"
)

// AuthService defines registration, verification and login operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	VerifyLink(ctx context.Context, token string) (string, error)
	VerifyOTP(ctx context.Context, token, otp string) (string, error)
	Login(ctx context.Context, email, password string) (model.SessionGrant, error)
}

// Auth handles the public /api/auth endpoints.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Register creates an account and starts email verification.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{Token: token, Message: service.MessageRegistered})
}

// VerifyEmail confirms a registration from the emailed link.
func (h *Auth) VerifyEmail(c *gin.Context) {
	msg, err := h.authService.VerifyLink(c.Request.Context(), c.Query("token"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

type verifyOTPRequest struct {
	Token string `json:"token"`
	OTP   string `json:"otp"`
}

// VerifyOTP confirms a registration with the emailed code.
func (h *Auth) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	msg, err := h.authService.VerifyOTP(c.Request.Context(), req.Token, req.OTP)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login issues a session for valid credentials.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	grant, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}
