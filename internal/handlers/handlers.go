package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "tixbay/internal/errors"
	"tixbay/internal/logger"
	"tixbay/internal/middleware"
	"tixbay/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps service errors to HTTP statuses. Anything not
// wrapping a sentinel is a 500 and gets logged with its cause.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		status, message = http.StatusConflict, "Not enough tickets available"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status, message = http.StatusConflict, "Operation not allowed in current state"
	case errors.Is(err, apperrors.ErrExpired):
		status, message = http.StatusGone, "Departure time has passed"
	case errors.Is(err, apperrors.ErrGateway):
		status, message = http.StatusBadGateway, "Payment gateway unavailable"
	default:
		logger.WithContext(c.Request.Context()).Error("Unhandled error",
			"error", err,
			"path", c.Request.URL.Path)
	}

	c.JSON(status, gin.H{"error": message})
}

// userEmail returns the authenticated caller. Routes using it sit
// behind the auth middleware, so a miss is a wiring bug.
func userEmail(c *gin.Context) (string, bool) {
	email, ok := middleware.UserEmailFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return email, ok
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return page, pageSize
}
