package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/logging"
	"interiorerp/internal/middleware"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
	"interiorerp/internal/services"
	"interiorerp/internal/taskflow"
)

// currentUser returns the caller's profile or writes 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return u, true
}

// statusFor maps domain errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, taskflow.ErrInvalidGate),
		errors.Is(err, taskflow.ErrInvalidParty),
		errors.Is(err, taskflow.ErrInvalidApprovalStatus):
		return http.StatusBadRequest
	case errors.Is(err, taskflow.ErrTaskFrozen),
		errors.Is(err, taskflow.ErrCompletionNotApproved):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs err under the [area][op] tag and writes the mapped response.
// Internal errors are not echoed to the client.
func fail(c *gin.Context, area, op string, err error) {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		logging.Logger.Errorf("[%s][%s][err] %v", area, op, err)
		msg = "internal error"
	case http.StatusForbidden:
		logging.Logger.Infof("[%s][%s][deny] %v", area, op, err)
	default:
		logging.Logger.Infof("[%s][%s][%d] %v", area, op, code, err)
	}
	c.JSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, area, op string, err error) {
	logging.Logger.Infof("[%s][%s][bind][err] %v", area, op, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
