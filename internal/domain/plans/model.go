package plans

import "slices"

type PlanID string

const (
	Free         PlanID = "free"
	Basic        PlanID = "basic"
	Professional PlanID = "professional"
	Enterprise   PlanID = "enterprise"
)

type Feature string

const (
	BasicScanning     Feature = "basic_scanning"
	AdvancedAnalytics Feature = "advanced_analytics"
	APIAccess         Feature = "api_access"
	PrioritySupport   Feature = "priority_support"
	CustomBranding    Feature = "custom_branding"
)

// Plan is one tier of the catalog. Price is the monthly price in whole USD.
type Plan struct {
	ID            PlanID    `json:"id"`
	Name          string    `json:"name"`
	Price         int       `json:"price"`
	MaxAssets     int       `json:"maxAssets"`
	Features      []Feature `json:"features"`
	StripePriceID string    `json:"stripePriceId,omitempty"`
}

func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

func (p Plan) clone() Plan {
	p.Features = slices.Clone(p.Features)
	return p
}
