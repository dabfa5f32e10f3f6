package organizationapi

import (
	"net/http"
	"time"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/access"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	store  organizations.Store
	svc    *subscription.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(store organizations.Store, svc *subscription.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, svc: svc, logger: logger, now: time.Now}
}

type availableOrganization struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Domain    string       `json:"domain"`
	Plan      plans.PlanID `json:"plan"`
	MaxAssets int          `json:"maxAssets"`
}

// Available lists active organizations for the registration form.
func (h *Handler) Available(c *gin.Context) {
	orgs, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	out := make([]availableOrganization, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, availableOrganization{
			ID:        o.ID,
			Name:      o.Name,
			Domain:    o.Domain,
			Plan:      o.Subscription.Plan,
			MaxAssets: o.Subscription.MaxAssets,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "organizations": out})
}

func (h *Handler) Details(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	usage, err := h.svc.Usage(c.Request.Context(), org)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           org.ID,
		"name":         org.Name,
		"domain":       org.Domain,
		"subscription": org.Subscription,
		"settings":     org.Settings,
		"stats": gin.H{
			"userCount":  usage.Users,
			"assetCount": usage.Hardware,
			"maxAssets":  org.Subscription.MaxAssets,
		},
		"createdAt": org.CreatedAt,
	})
}

type subscriptionInfo struct {
	organizations.Subscription
	DaysRemaining int  `json:"daysRemaining"`
	IsExpired     bool `json:"isExpired"`
}

func (h *Handler) Subscription(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	policy := access.ComputePolicy(h.now(), org.Subscription)
	c.JSON(http.StatusOK, subscriptionInfo{
		Subscription:  org.Subscription,
		DaysRemaining: policy.DaysRemaining,
		IsExpired:     policy.IsExpired,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), middleware.CurrentOrganization(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type settingsRequest struct {
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// UpdateSettings replaces the provided settings; empty fields keep their value.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var body settingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Malformed JSON")
		return
	}

	org := middleware.CurrentOrganization(c)
	settings := org.Settings
	if body.Timezone != "" {
		if _, err := time.LoadLocation(body.Timezone); err != nil {
			respond.BadRequest(c, "Unknown timezone")
			return
		}
		settings.Timezone = body.Timezone
	}
	if body.Currency != "" {
		settings.Currency = body.Currency
	}
	if body.Language != "" {
		settings.Language = body.Language
	}

	if err := h.store.UpdateSettings(c.Request.Context(), org.ID, settings); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Organization settings updated successfully",
		"settings": settings,
	})
}
