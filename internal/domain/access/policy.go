package access

import (
	"math"
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

// Policy is the evaluated entitlement state shown to clients.
type Policy struct {
	Active        bool                   `json:"active"`
	Plan          plans.PlanID           `json:"plan"`
	Status        organizations.Status   `json:"status"`
	Features      organizations.Features `json:"features"`
	MaxAssets     int                    `json:"maxAssets"`
	DaysRemaining int                    `json:"daysRemaining"`
	IsExpired     bool                   `json:"isExpired"`
	Warning       string                 `json:"warning,omitempty"`
}

func ComputePolicy(now time.Time, s organizations.Subscription) Policy {
	p := Policy{
		Active:    IsAccessActive(s, now),
		Plan:      s.Plan,
		Status:    s.Status,
		Features:  s.Features,
		MaxAssets: s.MaxAssets,
	}
	if s.EndDate != nil {
		days := int(math.Ceil(s.EndDate.Sub(now).Hours() / 24))
		if days > 0 {
			p.DaysRemaining = days
		}
		p.IsExpired = days <= 0
	}
	if RemainingGraceWarning(s) {
		p.Warning = CancelAtPeriodEndNotice
	}
	return p
}
