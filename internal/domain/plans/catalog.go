package plans

import (
	"errors"
	"fmt"
)

var ErrInvalidCatalog = errors.New("invalid plan catalog")

// PriceRefs carries the Stripe price ids for the paid tiers.
type PriceRefs struct {
	Basic        string
	Professional string
	Enterprise   string
}

// Catalog is the immutable set of plan definitions. Lookups never fail:
// anything unknown resolves to the free tier.
type Catalog struct {
	plans   []Plan
	byID    map[PlanID]Plan
	byPrice map[string]PlanID
}

// DefaultCatalog builds the four standard tiers.
func DefaultCatalog(refs PriceRefs) (*Catalog, error) {
	return NewCatalog([]Plan{
		{
			ID:        Free,
			Name:      "Free",
			Price:     0,
			MaxAssets: 10,
			Features:  []Feature{BasicScanning},
		},
		{
			ID:            Basic,
			Name:          "Basic",
			Price:         29,
			MaxAssets:     100,
			Features:      []Feature{BasicScanning, AdvancedAnalytics},
			StripePriceID: refs.Basic,
		},
		{
			ID:            Professional,
			Name:          "Professional",
			Price:         99,
			MaxAssets:     500,
			Features:      []Feature{BasicScanning, AdvancedAnalytics, APIAccess, PrioritySupport},
			StripePriceID: refs.Professional,
		},
		{
			ID:            Enterprise,
			Name:          "Enterprise",
			Price:         299,
			MaxAssets:     2000,
			Features:      []Feature{BasicScanning, AdvancedAnalytics, APIAccess, PrioritySupport, CustomBranding},
			StripePriceID: refs.Enterprise,
		},
	})
}

// NewCatalog validates defs and indexes them. defs may be given in any order.
func NewCatalog(defs []Plan) (*Catalog, error) {
	byID := make(map[PlanID]Plan, len(defs))
	for _, d := range defs {
		if Rank(d.ID) < 0 {
			return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidCatalog, d.ID)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, d.ID)
		}
		byID[d.ID] = d.clone()
	}

	ordered := make([]Plan, 0, len(tierOrder))
	byPrice := make(map[string]PlanID, len(tierOrder))
	var prev *Plan
	for _, id := range tierOrder {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: missing plan %q", ErrInvalidCatalog, id)
		}
		if p.MaxAssets <= 0 || p.Price < 0 {
			return nil, fmt.Errorf("%w: plan %q has invalid limits", ErrInvalidCatalog, id)
		}

		if id == Free {
			if p.StripePriceID != "" {
				return nil, fmt.Errorf("%w: free plan must not carry a price id", ErrInvalidCatalog)
			}
		} else {
			if p.StripePriceID == "" {
				return nil, fmt.Errorf("%w: plan %q has no price id", ErrInvalidCatalog, id)
			}
			if other, dup := byPrice[p.StripePriceID]; dup {
				return nil, fmt.Errorf("%w: price %q shared by %q and %q", ErrInvalidCatalog, p.StripePriceID, other, id)
			}
			byPrice[p.StripePriceID] = id
		}

		if prev != nil {
			if p.MaxAssets <= prev.MaxAssets {
				return nil, fmt.Errorf("%w: %q maxAssets must exceed %q", ErrInvalidCatalog, id, prev.ID)
			}
			for _, f := range prev.Features {
				if !p.HasFeature(f) {
					return nil, fmt.Errorf("%w: %q lacks feature %q of %q", ErrInvalidCatalog, id, f, prev.ID)
				}
			}
		}

		ordered = append(ordered, p)
		prev = &ordered[len(ordered)-1]
	}

	return &Catalog{plans: ordered, byID: byID, byPrice: byPrice}, nil
}

// Lookup returns the definition for id; unknown ids get the free plan.
func (c *Catalog) Lookup(id PlanID) Plan {
	switch id {
	case Basic, Professional, Enterprise:
		return c.byID[id].clone()
	default:
		return c.byID[Free].clone()
	}
}

// ReversePriceLookup maps a Stripe price id back to a plan. Empty or unknown
// price ids map to free.
func (c *Catalog) ReversePriceLookup(priceID string) PlanID {
	if id, ok := c.byPrice[priceID]; ok && priceID != "" {
		return id
	}
	return Free
}

// Purchasable reports whether id is a known plan with a price attached.
func (c *Catalog) Purchasable(id PlanID) bool {
	p, ok := c.byID[id]
	return ok && p.StripePriceID != ""
}

// Plans lists all tiers, cheapest first.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.clone()
	}
	return out
}
