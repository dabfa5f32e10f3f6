package organizations

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("organization not found")
	ErrVersionConflict = errors.New("subscription was modified concurrently")
)

// Store persists organizations. SaveSubscription writes the whole snapshot
// in one update, only when the stored version still equals expectedVersion,
// and bumps the version.
type Store interface {
	Create(ctx context.Context, org *Organization) error
	Get(ctx context.Context, id string) (*Organization, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*Organization, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Organization, error)
	ListActive(ctx context.Context) ([]Organization, error)
	SaveSubscription(ctx context.Context, id string, expectedVersion int64, sub Subscription) error
	UpdateSettings(ctx context.Context, id string, settings Settings) error
}
