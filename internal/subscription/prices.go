package subscription

import (
	"context"
	"fmt"
	"strings"

	"asset-manager-api/internal/domain/plans"
)

type PriceStatus string

const (
	PriceOK       PriceStatus = "ok"
	PriceMissing  PriceStatus = "missing"
	PriceInactive PriceStatus = "inactive"
	PriceMismatch PriceStatus = "mismatch"
)

// PriceCheck compares one purchasable plan with its provider price.
type PriceCheck struct {
	Plan          plans.PlanID `json:"plan"`
	StripePriceID string       `json:"stripePriceId"`
	Status        PriceStatus  `json:"status"`
	Detail        string       `json:"detail,omitempty"`
}

// CheckPrices verifies that every purchasable plan points at an active
// monthly USD price whose amount matches the catalog.
func (s *Service) CheckPrices(ctx context.Context) ([]PriceCheck, error) {
	remote, err := s.gateway.provider.ListPrices(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Price, len(remote))
	for _, p := range remote {
		byID[p.ID] = p
	}

	var out []PriceCheck
	for _, plan := range s.catalog.Plans() {
		if !s.catalog.Purchasable(plan.ID) {
			continue
		}
		check := PriceCheck{Plan: plan.ID, StripePriceID: plan.StripePriceID, Status: PriceOK}
		p, ok := byID[plan.StripePriceID]
		switch {
		case !ok:
			check.Status = PriceMissing
		case !p.Active:
			check.Status = PriceInactive
		default:
			check.Detail = priceMismatch(plan, p)
			if check.Detail != "" {
				check.Status = PriceMismatch
			}
		}
		out = append(out, check)
	}
	return out, nil
}

func priceMismatch(plan plans.Plan, p Price) string {
	var problems []string
	if want := int64(plan.Price) * 100; p.UnitAmount != want {
		problems = append(problems, fmt.Sprintf("amount %d, want %d", p.UnitAmount, want))
	}
	if !strings.EqualFold(p.Currency, "usd") {
		problems = append(problems, "currency "+p.Currency)
	}
	if p.Interval != "month" {
		problems = append(problems, "interval "+p.Interval)
	}
	return strings.Join(problems, "; ")
}
