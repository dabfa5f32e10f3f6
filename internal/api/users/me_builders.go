package users

import (
	"time"

	"asset-manager-api/internal/domain/access"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

const (
	StateTrial  = "trial"
	StateFull   = "full"
	StateGrace  = "grace"
	StateLocked = "locked"
)

func BuildPlanDTO(p plans.Plan) PlanDTO {
	return PlanDTO{
		Key:           p.ID,
		Name:          p.Name,
		PriceUSD:      p.Price,
		StripePriceID: p.StripePriceID,
	}
}

func BuildSubscriptionDTO(s organizations.Subscription) *SubscriptionDTO {
	if !s.HasStripeSubscription() {
		return nil
	}
	return &SubscriptionDTO{
		Status:               s.Status,
		CurrentPeriodStart:   s.CurrentPeriodStart,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		StripeSubscriptionID: s.StripeSubscriptionID,
	}
}

// BuildTrialDTO describes the free trial. Paid subscriptions have none.
func BuildTrialDTO(policy access.Policy, s organizations.Subscription) *TrialDTO {
	if s.Plan != plans.Free || s.EndDate == nil {
		return nil
	}
	return &TrialDTO{
		StartsAt: s.StartDate,
		EndsAt:   s.EndDate,
		DaysLeft: policy.DaysRemaining,
	}
}

func BuildAccessDTO(policy access.Policy, s organizations.Subscription) AccessDTO {
	caps := []plans.Feature(policy.Features)
	if !policy.Active {
		caps = []plans.Feature{}
	}
	return AccessDTO{
		State:        accessState(policy, s),
		Capabilities: caps,
		MaxAssets:    policy.MaxAssets,
		Warning:      policy.Warning,
	}
}

func accessState(policy access.Policy, s organizations.Subscription) string {
	switch {
	case !policy.Active:
		return StateLocked
	case policy.Warning != "":
		return StateGrace
	case s.Plan == plans.Free && s.EndDate != nil:
		return StateTrial
	default:
		return StateFull
	}
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func buildMe(now time.Time, p UserDTO, org *organizations.Organization, catalog *plans.Catalog) MeResponse {
	s := org.Subscription
	policy := access.ComputePolicy(now, s)
	return MeResponse{
		User: p,
		Organization: OrganizationDTO{
			ID:       org.ID,
			Name:     org.Name,
			Domain:   org.Domain,
			Settings: org.Settings,
		},
		Billing: BillingDTO{
			Plan:         BuildPlanDTO(catalog.Lookup(s.Plan)),
			Subscription: BuildSubscriptionDTO(s),
			Trial:        BuildTrialDTO(policy, s),
		},
		Access: BuildAccessDTO(policy, s),
	}
}
