package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// AccountService defines operations on the authenticated account.
type AccountService interface {
	Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) (string, error)
	VerifyEmailChange(ctx context.Context, userID uuid.UUID, token, code string) (model.SessionGrant, error)
	RequestPasswordSet(ctx context.Context, userID uuid.UUID) (string, error)
	VerifyPasswordSet(ctx context.Context, userID uuid.UUID, token, code, password string) (model.SessionGrant, error)
}

// Account handles the authenticated /api/account endpoints.
type Account struct {
	accountService AccountService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAccount creates a new Account handler.
func NewAccount(accountService AccountService, contextManager model.ContextManager, logger *logger.Logger) *Account {
	return &Account{accountService: accountService, contextManager: contextManager, logger: logger}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Account) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, h.logger, apierr.NewErrMissingAuthorizationToken())
	}
	return userID, ok
}

// Me returns the profile of the caller.
func (h *Account) Me(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	profile, err := h.accountService.Profile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type emailChangeRequest struct {
	NewEmail string `json:"newEmail"`
}

// RequestEmailChange sends a code to the new address.
func (h *Account) RequestEmailChange(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req emailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	token, err := h.accountService.RequestEmailChange(c.Request.Context(), userID, req.NewEmail)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

type verifyCodeRequest struct {
	Token    string `json:"token"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// VerifyEmailChange applies the email change and returns a new session.
func (h *Account) VerifyEmailChange(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	grant, err := h.accountService.VerifyEmailChange(c.Request.Context(), userID, req.Token, req.Code)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

// RequestPasswordSet sends a code to the account address.
func (h *Account) RequestPasswordSet(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	token, err := h.accountService.RequestPasswordSet(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// VerifyPasswordSet stores the new password and returns a new session.
func (h *Account) VerifyPasswordSet(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	grant, err := h.accountService.VerifyPasswordSet(c.Request.Context(), userID, req.Token, req.Code, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}
