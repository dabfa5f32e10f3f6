package middleware

import (
	"errors"
	"net/http"

	"asset-manager-api/internal/domain/organizations"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const organizationKey = "organization"

// OrganizationContext loads the caller's organization and rejects inactive ones.
func OrganizationContext(store organizations.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok || p.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "User organization not found"})
			return
		}

		org, err := store.Get(c.Request.Context(), p.OrganizationID)
		if errors.Is(err, organizations.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Organization not found"})
			return
		}
		if err != nil {
			logger.Error("load organization context failed",
				zap.String("organization_id", p.OrganizationID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load organization context"})
			return
		}
		if !org.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Organization is inactive"})
			return
		}

		c.Set(organizationKey, org)
		c.Next()
	}
}

// CurrentOrganization returns the organization set by OrganizationContext.
func CurrentOrganization(c *gin.Context) *organizations.Organization {
	v, ok := c.Get(organizationKey)
	if !ok {
		return nil
	}
	org, _ := v.(*organizations.Organization)
	return org
}
