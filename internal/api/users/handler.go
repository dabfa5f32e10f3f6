package users

import (
	"net/http"
	"time"

	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *plans.Catalog
	now     func() time.Time
}

func NewHandler(catalog *plans.Catalog, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{catalog: catalog, now: now}
}

// GetCurrentUser returns the caller with their organization's billing and
// access state in one payload.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	org := middleware.CurrentOrganization(c)

	user := UserDTO{ID: p.UserID, Email: stringPtrIfNotEmpty(p.Email), Role: p.Role}
	c.JSON(http.StatusOK, buildMe(h.now(), user, org, h.catalog))
}
