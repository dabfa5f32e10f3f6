package access

import (
	"fmt"
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

// Denial explains why an entitlement check failed. It is rendered as the
// 403 response body.
type Denial struct {
	Reason            Reason                 `json:"reason"`
	Error             string                 `json:"error"`
	Plan              plans.PlanID           `json:"plan"`
	Status            organizations.Status   `json:"subscriptionStatus"`
	ExpiredDate       *time.Time             `json:"expiredDate,omitempty"`
	RequiredFeature   plans.Feature          `json:"requiredFeature,omitempty"`
	AvailableFeatures organizations.Features `json:"availableFeatures,omitempty"`
	CurrentAssets     *int                   `json:"currentAssets,omitempty"`
	MaxAssets         *int                   `json:"maxAssets,omitempty"`
	Message           string                 `json:"message"`
}

func assetLimitMessage(plan plans.PlanID, limit int) string {
	return fmt.Sprintf("You've reached the limit of %d assets for your %s plan. Please upgrade to add more assets.", limit, plan)
}
