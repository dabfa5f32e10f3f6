package billing

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Payments(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	payments, err := h.svc.Payments(c.Request.Context(), org.ID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}
