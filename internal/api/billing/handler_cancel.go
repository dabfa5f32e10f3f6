package billing

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type cancelRequest struct {
	CancelAtPeriodEnd *bool `json:"cancelAtPeriodEnd"`
}

func (h *Handler) Cancel(c *gin.Context) {
	var body cancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respond.BadRequest(c, "Malformed JSON")
			return
		}
	}
	atPeriodEnd := body.CancelAtPeriodEnd == nil || *body.CancelAtPeriodEnd

	org := middleware.CurrentOrganization(c)
	if err := h.svc.Cancel(c.Request.Context(), org, atPeriodEnd); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	msg := "Subscription cancelled immediately"
	if atPeriodEnd {
		msg = "Subscription will be cancelled at the end of the current period"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
		"subscription": gin.H{
			"status":            org.Subscription.Status,
			"cancelAtPeriodEnd": org.Subscription.CancelAtPeriodEnd,
		},
	})
}

func (h *Handler) Reactivate(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	if err := h.svc.Reactivate(c.Request.Context(), org); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Subscription reactivated successfully",
		"subscription": gin.H{
			"status":            org.Subscription.Status,
			"cancelAtPeriodEnd": org.Subscription.CancelAtPeriodEnd,
		},
	})
}
