package postgres

import (
	"context"
	"errors"
	"fmt"

	"asset-manager-api/internal/domain/organizations"

	"gorm.io/gorm"
)

// Store is the gorm-backed implementation of the organization, payment,
// usage and inventory ports.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ organizations.Store = (*Store)(nil)

func (s *Store) Create(ctx context.Context, org *organizations.Organization) error {
	if err := s.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*organizations.Organization, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Store) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*organizations.Organization, error) {
	if subscriptionID == "" {
		return nil, organizations.ErrNotFound
	}
	return s.first(ctx, "subscription_stripe_subscription_id = ?", subscriptionID)
}

func (s *Store) FindByStripeCustomerID(ctx context.Context, customerID string) (*organizations.Organization, error) {
	if customerID == "" {
		return nil, organizations.ErrNotFound
	}
	return s.first(ctx, "subscription_stripe_customer_id = ?", customerID)
}

func (s *Store) first(ctx context.Context, query string, arg any) (*organizations.Organization, error) {
	var org organizations.Organization
	err := s.db.WithContext(ctx).Where(query, arg).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, organizations.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return &org, nil
}

func (s *Store) ListActive(ctx context.Context) ([]organizations.Organization, error) {
	var orgs []organizations.Organization
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

// SaveSubscription writes every snapshot column in one UPDATE guarded by
// the version column.
func (s *Store) SaveSubscription(ctx context.Context, id string, expectedVersion int64, sub organizations.Subscription) error {
	res := s.db.WithContext(ctx).
		Model(&organizations.Organization{}).
		Where("id = ? AND subscription_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"subscription_plan":                   sub.Plan,
			"subscription_status":                 sub.Status,
			"subscription_start_date":             sub.StartDate,
			"subscription_end_date":               sub.EndDate,
			"subscription_max_assets":             sub.MaxAssets,
			"subscription_features":               sub.Features,
			"subscription_stripe_customer_id":     sub.StripeCustomerID,
			"subscription_stripe_subscription_id": sub.StripeSubscriptionID,
			"subscription_stripe_price_id":        sub.StripePriceID,
			"subscription_current_period_start":   sub.CurrentPeriodStart,
			"subscription_current_period_end":     sub.CurrentPeriodEnd,
			"subscription_cancel_at_period_end":   sub.CancelAtPeriodEnd,
			"subscription_version":                expectedVersion + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("save subscription: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&organizations.Organization{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	if n == 0 {
		return organizations.ErrNotFound
	}
	return organizations.ErrVersionConflict
}

func (s *Store) UpdateSettings(ctx context.Context, id string, settings organizations.Settings) error {
	res := s.db.WithContext(ctx).
		Model(&organizations.Organization{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"settings_timezone": settings.Timezone,
			"settings_currency": settings.Currency,
			"settings_language": settings.Language,
		})
	if res.Error != nil {
		return fmt.Errorf("update settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return organizations.ErrNotFound
	}
	return nil
}
