package billing

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
)

type changePlanRequest struct {
	PlanName string `json:"planName"`
}

func (h *Handler) ChangePlan(c *gin.Context) {
	var body changePlanRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanName == "" {
		respond.BadRequest(c, "Plan name is required")
		return
	}
	org := middleware.CurrentOrganization(c)
	if body.PlanName == string(org.Subscription.Plan) {
		respond.Error(c, h.logger, subscription.ErrAlreadyOnPlan)
		return
	}
	planID, ok := plans.ParsePlanID(body.PlanName)
	if !ok {
		respond.Error(c, h.logger, subscription.ErrInvalidPlan)
		return
	}

	successURL := h.appURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := h.appURL + "/subscription/cancel"
	res, err := h.svc.ChangePlan(c.Request.Context(), org, planID, successURL, cancelURL)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	if res.Action == subscription.ActionCheckout {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"action":    res.Action,
			"sessionId": res.Checkout.ID,
			"url":       res.Checkout.URL,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  res.Action,
		"message": "Plan changed successfully",
		"subscription": gin.H{
			"plan":      res.Subscription.Plan,
			"status":    res.Subscription.Status,
			"maxAssets": res.Subscription.MaxAssets,
			"features":  res.Subscription.Features,
		},
	})
}
