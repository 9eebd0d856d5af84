package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

type messageResponse struct {
	Message string `json:"message"`
}

// handleError writes err as a {message} body. Unknown errors are logged
// and reported as 500 without details.
func handleError(c *gin.Context, logger *logger.Logger, err error) {
	var apiErr *apierr.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		c.JSON(apiErr.Status, messageResponse{Message: apiErr.Message})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, messageResponse{Message: "not found"})
	default:
		_ = c.Error(err)
		logger.Error("Handler: internal error",
			"path", c.FullPath(),
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
}
