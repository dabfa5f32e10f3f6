package plansapi

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *subscription.Service
	logger *zap.Logger
}

func NewHandler(svc *subscription.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// CheckPrices reports whether each paid plan's Stripe price exists and
// matches the catalog.
func (h *Handler) CheckPrices(c *gin.Context) {
	checks, err := h.svc.CheckPrices(c.Request.Context())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	healthy := 0
	for _, ch := range checks {
		if ch.Status == subscription.PriceOK {
			healthy++
		}
	}
	if healthy < len(checks) {
		h.logger.Warn("catalog prices out of sync with stripe",
			zap.Int("ok", healthy), zap.Int("total", len(checks)))
	}

	c.JSON(http.StatusOK, gin.H{
		"prices":   checks,
		"ok":       healthy,
		"problems": len(checks) - healthy,
	})
}
