package admin

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
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
}

func NewHandler(store organizations.Store, svc *subscription.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, svc: svc, logger: logger}
}

type AdminOrganization struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Domain               string               `json:"domain"`
	Plan                 plans.PlanID         `json:"plan"`
	Status               organizations.Status `json:"status"`
	MaxAssets            int                  `json:"maxAssets"`
	StripeCustomerID     string               `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string               `json:"stripeSubscriptionId,omitempty"`
	CancelAtPeriodEnd    bool                 `json:"cancelAtPeriodEnd"`
}

type AdminStats struct {
	TotalOrganizations   int                  `json:"totalOrganizations"`
	OrganizationsPerPlan map[plans.PlanID]int `json:"organizationsPerPlan"`
}

// ListOrganizations reports every active organization with its billing refs.
func (h *Handler) ListOrganizations(c *gin.Context) {
	orgs, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	stats := AdminStats{OrganizationsPerPlan: map[plans.PlanID]int{}}
	out := make([]AdminOrganization, 0, len(orgs))
	for _, o := range orgs {
		s := o.Subscription
		out = append(out, AdminOrganization{
			ID:                   o.ID,
			Name:                 o.Name,
			Domain:               o.Domain,
			Plan:                 s.Plan,
			Status:               s.Status,
			MaxAssets:            s.MaxAssets,
			StripeCustomerID:     s.StripeCustomerID,
			StripeSubscriptionID: s.StripeSubscriptionID,
			CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		})
		stats.OrganizationsPerPlan[s.Plan]++
	}
	stats.TotalOrganizations = len(out)

	c.JSON(http.StatusOK, gin.H{"organizations": out, "stats": stats})
}

// SyncOrganization overwrites the organization's snapshot from the provider.
func (h *Handler) SyncOrganization(c *gin.Context) {
	org, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	if err := h.svc.Resync(c.Request.Context(), org); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	h.logger.Info("organization resynced by admin", zap.String("organization_id", org.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": org.Subscription})
}
