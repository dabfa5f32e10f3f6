package subscription

import (
	"context"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
)

// CheckoutRequest describes a hosted checkout for one plan price.
type CheckoutRequest struct {
	OrganizationID string
	CustomerID     string
	Plan           plans.PlanID
	PriceID        string
	SuccessURL     string
	CancelURL      string
}

type CheckoutSession struct {
	ID             string `json:"sessionId"`
	URL            string `json:"url"`
	CustomerID     string `json:"-"`
	SubscriptionID string `json:"-"`
	Complete       bool   `json:"-"`
}

// Price is a recurring provider price.
type Price struct {
	ID         string
	Active     bool
	Currency   string
	UnitAmount int64
	Interval   string
	ProductID  string
}

// Provider is the billing provider. Every failure is wrapped with
// ErrProviderUnavailable.
type Provider interface {
	CreateCustomer(ctx context.Context, org organizations.Organization) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (organizations.ProviderSubscription, error)
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (organizations.ProviderSubscription, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (organizations.ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (organizations.ProviderSubscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (organizations.ProviderSubscription, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ListPrices(ctx context.Context) ([]Price, error)
}

// UsageCounter counts an organization's records in one collection.
type UsageCounter interface {
	Count(ctx context.Context, organizationID string, c inventory.Collection) (int64, error)
}

// PaymentStore keeps invoice outcomes. RecordPayment is an upsert keyed by invoice id.
type PaymentStore interface {
	RecordPayment(ctx context.Context, p billing.Payment) error
	ListPayments(ctx context.Context, organizationID string) ([]billing.Payment, error)
}
