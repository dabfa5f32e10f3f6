package organizations

import (
	"slices"
	"time"

	"asset-manager-api/internal/domain/plans"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// Subscription is the locally cached view of the organization's billing
// state. MaxAssets and Features are derived from the plan and only change
// through Sync. Version guards concurrent writers.
type Subscription struct {
	Plan                 plans.PlanID `gorm:"type:varchar(32);not null;default:'free'" json:"plan" bson:"plan"`
	Status               Status       `gorm:"type:varchar(16);not null;default:'active'" json:"status" bson:"status"`
	StartDate            time.Time    `json:"startDate" bson:"startDate"`
	EndDate              *time.Time   `json:"endDate" bson:"endDate,omitempty"`
	MaxAssets            int          `gorm:"not null" json:"maxAssets" bson:"maxAssets"`
	Features             Features     `gorm:"type:jsonb" json:"features" bson:"features"`
	StripeCustomerID     string       `gorm:"index" json:"stripeCustomerId,omitempty" bson:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string       `gorm:"index" json:"stripeSubscriptionId,omitempty" bson:"stripeSubscriptionId,omitempty"`
	StripePriceID        string       `json:"stripePriceId,omitempty" bson:"stripePriceId,omitempty"`
	CurrentPeriodStart   *time.Time   `json:"currentPeriodStart" bson:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd     *time.Time   `json:"currentPeriodEnd" bson:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd    bool         `json:"cancelAtPeriodEnd" bson:"cancelAtPeriodEnd"`
	Version              int64        `gorm:"not null;default:0" json:"-" bson:"version"`
}

// ProviderSubscription is the billing provider's view of a subscription,
// already normalized to local statuses.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	PriceID            string
	Status             Status
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
}

func NewSubscription(now time.Time, trial time.Duration, free plans.Plan) Subscription {
	s := Subscription{
		Plan:      free.ID,
		Status:    StatusActive,
		StartDate: now,
		MaxAssets: free.MaxAssets,
		Features:  Features(slices.Clone(free.Features)),
	}
	if trial > 0 {
		end := now.Add(trial)
		s.EndDate = &end
	}
	return s
}

// Sync overwrites every provider-derived field of s from remote. Applying
// it twice with the same remote yields the same snapshot.
func Sync(s Subscription, remote ProviderSubscription, catalog *plans.Catalog) Subscription {
	plan := catalog.Lookup(catalog.ReversePriceLookup(remote.PriceID))

	s.Plan = plan.ID
	s.MaxAssets = plan.MaxAssets
	s.Features = Features(slices.Clone(plan.Features))
	s.Status = remote.Status
	s.StripeSubscriptionID = remote.ID
	s.StripePriceID = remote.PriceID
	if remote.CustomerID != "" {
		s.StripeCustomerID = remote.CustomerID
	}
	s.CurrentPeriodStart = timePtr(remote.CurrentPeriodStart)
	s.CurrentPeriodEnd = timePtr(remote.CurrentPeriodEnd)
	s.EndDate = timePtr(remote.CurrentPeriodEnd)
	s.CancelAtPeriodEnd = remote.CancelAtPeriodEnd
	return s
}

// MarkCancelled records a provider-side deletion. Plan and limits are kept
// until a later sync says otherwise.
func MarkCancelled(s Subscription) Subscription {
	s.Status = StatusCancelled
	return s
}

func (s Subscription) HasStripeSubscription() bool { return s.StripeSubscriptionID != "" }
func (s Subscription) HasStripeCustomer() bool     { return s.StripeCustomerID != "" }

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
