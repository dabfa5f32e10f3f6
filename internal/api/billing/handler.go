package billing

import (
	"net/http"
	"strings"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *subscription.Service
	appURL string
	logger *zap.Logger
}

// NewHandler serves the subscription routes. appURL is the frontend origin
// used for portal and checkout return links.
func NewHandler(svc *subscription.Service, appURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, appURL: strings.TrimRight(appURL, "/"), logger: logger}
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "plans": h.svc.Plans()})
}

func (h *Handler) Details(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	d := h.svc.Details(c.Request.Context(), org)
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"subscription":       d.Subscription,
		"policy":             d.Policy,
		"stripeSubscription": d.Remote,
	})
}

func (h *Handler) Usage(c *gin.Context) {
	usage, err := h.svc.Usage(c.Request.Context(), middleware.CurrentOrganization(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usage": usage})
}
