package users

import (
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

type MeResponse struct {
	User         UserDTO         `json:"user"`
	Organization OrganizationDTO `json:"organization"`
	Billing      BillingDTO      `json:"billing"`
	Access       AccessDTO       `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Role  string  `json:"role"`
}

type OrganizationDTO struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Domain   string                 `json:"domain"`
	Settings organizations.Settings `json:"settings"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan         PlanDTO          `json:"plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
	Trial        *TrialDTO        `json:"trial"`
}

type PlanDTO struct {
	Key           plans.PlanID `json:"key"`
	Name          string       `json:"name"`
	PriceUSD      int          `json:"price_usd"`
	StripePriceID string       `json:"stripe_price_id,omitempty"`
}

type SubscriptionDTO struct {
	Status               organizations.Status `json:"status"`
	CurrentPeriodStart   *time.Time           `json:"current_period_start"`
	CurrentPeriodEnd     *time.Time           `json:"current_period_end"`
	CancelAtPeriodEnd    bool                 `json:"cancel_at_period_end"`
	StripeSubscriptionID string               `json:"stripe_subscription_id"`
}

type TrialDTO struct {
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft int        `json:"days_left"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string          `json:"state"` // trial|full|grace|locked
	Capabilities []plans.Feature `json:"capabilities"`
	MaxAssets    int             `json:"max_assets"`
	Warning      string          `json:"warning,omitempty"`
}
