package routes

import (
	"net/http"
	"time"

	adminapi "asset-manager-api/internal/api/admin"
	"asset-manager-api/internal/api/billing"
	inventoryapi "asset-manager-api/internal/api/inventory"
	organizationapi "asset-manager-api/internal/api/organization"
	plansapi "asset-manager-api/internal/api/plans"
	stripewebhooks "asset-manager-api/internal/api/stripewebhook"
	usersapi "asset-manager-api/internal/api/users"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Billing      *billing.Handler
	Organization *organizationapi.Handler
	Inventory    *inventoryapi.Handler
	Users        *usersapi.Handler
	Admin        *adminapi.Handler
	Plans        *plansapi.Handler
	Webhook      *stripewebhooks.Handler
}

// Guards carries what the auth and entitlement middleware need.
type Guards struct {
	Verifier      middleware.TokenVerifier
	Organizations organizations.Store
	Assets        middleware.AssetCounter
	Now           func() time.Time
	Logger        *zap.Logger
}

func RegisterRoutes(r *gin.Engine, h Handlers, g Guards) {
	if g.Now == nil {
		g.Now = time.Now
	}
	if g.Logger == nil {
		g.Logger = zap.NewNop()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Raw body is needed for signature verification; no sanitizer here.
	api.POST("/webhook/stripe", h.Webhook.StripeWebhook)
	api.GET("/subscription/plans", h.Billing.ListPlans)
	api.GET("/organization/available", h.Organization.Available)

	sanitize := middleware.SanitizeAndCleanInputMiddleware()
	requireAdmin := middleware.RequireRole(users.RoleAdmin)

	// Authenticated, with an active organization in context
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(g.Verifier), middleware.OrganizationContext(g.Organizations, g.Logger))

	sub := auth.Group("/subscription")
	sub.GET("/details", h.Billing.Details)
	sub.GET("/usage", h.Billing.Usage)
	sub.POST("/checkout", h.Billing.CreateCheckoutSession)
	sub.POST("/change-plan", h.Billing.ChangePlan)
	sub.POST("/cancel", h.Billing.Cancel)
	sub.POST("/reactivate", h.Billing.Reactivate)
	sub.GET("/portal", h.Billing.Portal)
	sub.GET("/success", h.Billing.CheckoutSuccess)

	org := auth.Group("/organization")
	org.GET("/details", h.Organization.Details)
	org.GET("/subscription", h.Organization.Subscription)
	org.GET("/stats", h.Organization.Stats)
	org.PUT("/settings", requireAdmin, sanitize, h.Organization.UpdateSettings)

	auth.GET("/payments", h.Billing.Payments)
	auth.GET("/users/me", h.Users.GetCurrentUser)

	// Entitled organizations only
	hw := auth.Group("/hardware")
	hw.Use(middleware.RequireActiveSubscription(g.Now, g.Logger))
	hw.GET("", h.Inventory.List)
	hw.POST("", sanitize, middleware.EnforceAssetLimit(g.Assets, g.Logger), h.Inventory.Create)
	hw.DELETE("/:id", h.Inventory.Delete)
	hw.GET("/summary", middleware.RequireFeature(plans.AdvancedAnalytics), h.Inventory.Summary)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(g.Verifier), requireAdmin)
	admin.GET("/organizations", h.Admin.ListOrganizations)
	admin.POST("/organizations/:id/sync", h.Admin.SyncOrganization)
	admin.GET("/plans/prices", h.Plans.CheckPrices)
}
