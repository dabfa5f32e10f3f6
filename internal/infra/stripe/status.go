package stripe

import (
	"strings"

	"asset-manager-api/internal/domain/organizations"
)

// NormalizeStatus folds Stripe's subscription statuses onto the four local ones.
func NormalizeStatus(s string) organizations.Status {
	switch strings.TrimSpace(s) {
	case "active", "trialing":
		return organizations.StatusActive
	case "canceled", "incomplete_expired":
		return organizations.StatusCancelled
	case "paused":
		return organizations.StatusSuspended
	default:
		// incomplete, past_due, unpaid, unknown
		return organizations.StatusInactive
	}
}
