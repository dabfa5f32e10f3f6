package access

import (
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

// IsAccessActive reports whether s grants access at now. An active status
// alone is not enough: both the end date and the paid period must still run.
func IsAccessActive(s organizations.Subscription, now time.Time) bool {
	return CheckAccess(s, now) == nil
}

func HasFeature(s organizations.Subscription, f plans.Feature) bool {
	return s.Features.Contains(f)
}

// CanAddAsset reports whether one more hardware asset fits the plan limit.
func CanAddAsset(s organizations.Subscription, currentCount int) bool {
	return currentCount < s.MaxAssets
}

// RemainingGraceWarning is true while a cancellation is scheduled but access continues.
func RemainingGraceWarning(s organizations.Subscription) bool {
	return s.CancelAtPeriodEnd
}

func CheckAccess(s organizations.Subscription, now time.Time) *Denial {
	if s.Status != organizations.StatusActive {
		return &Denial{
			Reason:  ReasonInactive,
			Error:   "Subscription is not active",
			Plan:    s.Plan,
			Status:  s.Status,
			Message: "Please update your subscription to continue using the service.",
		}
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return &Denial{
			Reason:      ReasonExpired,
			Error:       "Subscription has expired",
			Plan:        s.Plan,
			Status:      s.Status,
			ExpiredDate: s.EndDate,
			Message:     "Please renew your subscription to continue.",
		}
	}
	if s.CurrentPeriodEnd != nil && now.After(*s.CurrentPeriodEnd) {
		return &Denial{
			Reason:      ReasonPeriodExpired,
			Error:       "Subscription period has expired",
			Plan:        s.Plan,
			Status:      s.Status,
			ExpiredDate: s.CurrentPeriodEnd,
			Message:     "Please update your payment method or contact support.",
		}
	}
	return nil
}

func CheckFeature(s organizations.Subscription, f plans.Feature) *Denial {
	if HasFeature(s, f) {
		return nil
	}
	available := s.Features
	if available == nil {
		available = organizations.Features{}
	}
	return &Denial{
		Reason:            ReasonFeatureMissing,
		Error:             "Feature not available",
		Plan:              s.Plan,
		Status:            s.Status,
		RequiredFeature:   f,
		AvailableFeatures: available,
		Message:           "This feature requires a higher subscription plan.",
	}
}

func CheckAssetLimit(s organizations.Subscription, currentCount int) *Denial {
	if CanAddAsset(s, currentCount) {
		return nil
	}
	current, limit := currentCount, s.MaxAssets
	return &Denial{
		Reason:        ReasonAssetLimit,
		Error:         "Asset limit reached",
		Plan:          s.Plan,
		Status:        s.Status,
		CurrentAssets: &current,
		MaxAssets:     &limit,
		Message:       assetLimitMessage(s.Plan, s.MaxAssets),
	}
}
