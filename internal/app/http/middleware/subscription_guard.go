package middleware

import (
	"context"
	"net/http"
	"time"

	"asset-manager-api/internal/domain/access"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SubscriptionWarningHeader = "X-Subscription-Warning"

// AssetCounter counts the hardware an organization already has.
type AssetCounter interface {
	AssetCount(ctx context.Context, organizationID string) (int64, error)
}

func deny(c *gin.Context, d *access.Denial) {
	metrics.EntitlementDenials.WithLabelValues(string(d.Reason)).Inc()
	c.AbortWithStatusJSON(http.StatusForbidden, d)
}

// RequireActiveSubscription blocks organizations whose subscription does not
// grant access. A scheduled cancellation passes with a warning header.
func RequireActiveSubscription(now func() time.Time, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		org := CurrentOrganization(c)
		if org == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Organization not found"})
			return
		}

		if d := access.CheckAccess(org.Subscription, now()); d != nil {
			deny(c, d)
			return
		}

		if access.RemainingGraceWarning(org.Subscription) {
			logger.Debug("subscription will cancel at period end",
				zap.String("organization_id", org.ID))
			c.Header(SubscriptionWarningHeader, access.CancelAtPeriodEndNotice)
		}
		c.Next()
	}
}

func RequireFeature(f plans.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		org := CurrentOrganization(c)
		if org == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Organization not found"})
			return
		}
		if d := access.CheckFeature(org.Subscription, f); d != nil {
			deny(c, d)
			return
		}
		c.Next()
	}
}

// EnforceAssetLimit rejects asset creation once the plan limit is reached.
func EnforceAssetLimit(counter AssetCounter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		org := CurrentOrganization(c)
		if org == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Organization not found"})
			return
		}

		n, err := counter.AssetCount(c.Request.Context(), org.ID)
		if err != nil {
			logger.Error("count assets failed", zap.String("organization_id", org.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription limits"})
			return
		}
		if d := access.CheckAssetLimit(org.Subscription, int(n)); d != nil {
			deny(c, d)
			return
		}
		c.Next()
	}
}
