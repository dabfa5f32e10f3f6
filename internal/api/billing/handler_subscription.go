package billing

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Portal(c *gin.Context) {
	url, err := h.svc.OpenPortal(c.Request.Context(), middleware.CurrentOrganization(c), h.appURL+"/dashboard")
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
