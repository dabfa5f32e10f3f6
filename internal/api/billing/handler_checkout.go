package billing

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	PlanName   string `json:"planName"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanName == "" || body.SuccessURL == "" || body.CancelURL == "" {
		respond.BadRequest(c, "Missing required fields")
		return
	}
	planID, ok := plans.ParsePlanID(body.PlanName)
	if !ok {
		respond.Error(c, h.logger, subscription.ErrInvalidPlan)
		return
	}

	session, err := h.svc.StartCheckout(c.Request.Context(), middleware.CurrentOrganization(c), planID, body.SuccessURL, body.CancelURL)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": session.ID, "url": session.URL})
}

// CheckoutSuccess confirms a completed checkout and links the new
// subscription without waiting for the webhook.
func (h *Handler) CheckoutSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = c.Query("sessionId")
	}
	if sessionID == "" {
		respond.BadRequest(c, "Session ID is required")
		return
	}

	org := middleware.CurrentOrganization(c)
	if err := h.svc.ConfirmCheckout(c.Request.Context(), org, sessionID); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Subscription activated successfully",
		"subscription": org.Subscription,
	})
}
