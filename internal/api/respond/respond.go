// Package respond maps domain errors onto HTTP responses.
package respond

import (
	"errors"
	"net/http"

	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{subscription.ErrInvalidPlan, http.StatusBadRequest},
	{subscription.ErrAlreadyOnPlan, http.StatusBadRequest},
	{subscription.ErrNoActiveSubscription, http.StatusBadRequest},
	{subscription.ErrNoSubscription, http.StatusBadRequest},
	{subscription.ErrInvalidCheckout, http.StatusBadRequest},
	{subscription.ErrNoCustomer, http.StatusConflict},
	{organizations.ErrNotFound, http.StatusNotFound},
	{inventory.ErrNotFound, http.StatusNotFound},
	{organizations.ErrVersionConflict, http.StatusConflict},
	{subscription.ErrProviderUnavailable, http.StatusBadGateway},
}

// Status returns the HTTP status and client-safe message for err.
func Status(err error) (int, string) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			if s.status == http.StatusBadGateway {
				return s.status, "Billing provider unavailable"
			}
			return s.status, s.err.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Error writes the mapped error response. Server-side failures are logged
// with the full error chain.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// BadRequest rejects malformed input.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
