package subscription

import (
	"context"
	"errors"
	"fmt"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/infra/metrics"

	"go.uber.org/zap"
)

const maxSaveAttempts = 3

// Gateway wraps the billing provider and is the only writer of
// provider-derived snapshot fields.
type Gateway struct {
	store    organizations.Store
	provider Provider
	catalog  *plans.Catalog
	logger   *zap.Logger
}

func NewGateway(store organizations.Store, provider Provider, catalog *plans.Catalog, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, provider: provider, catalog: catalog, logger: logger}
}

// EnsureCustomer returns the organization's customer id, creating and
// persisting one first when missing.
func (g *Gateway) EnsureCustomer(ctx context.Context, org *organizations.Organization) (string, error) {
	if org.Subscription.HasStripeCustomer() {
		return org.Subscription.StripeCustomerID, nil
	}

	customerID, err := g.provider.CreateCustomer(ctx, *org)
	if err != nil {
		return "", fmt.Errorf("create customer for %s: %w", org.ID, err)
	}

	err = g.apply(ctx, org, func(s organizations.Subscription) organizations.Subscription {
		if !s.HasStripeCustomer() {
			s.StripeCustomerID = customerID
		}
		return s
	})
	if err != nil {
		return "", fmt.Errorf("store customer for %s: %w", org.ID, err)
	}

	g.logger.Info("stripe customer linked",
		zap.String("organization_id", org.ID),
		zap.String("customer_id", org.Subscription.StripeCustomerID))
	return org.Subscription.StripeCustomerID, nil
}

func (g *Gateway) StartCheckout(ctx context.Context, org *organizations.Organization, planID plans.PlanID, successURL, cancelURL string) (CheckoutSession, error) {
	if !g.catalog.Purchasable(planID) {
		return CheckoutSession{}, fmt.Errorf("%w: %q", ErrInvalidPlan, planID)
	}

	customerID, err := g.EnsureCustomer(ctx, org)
	if err != nil {
		return CheckoutSession{}, err
	}

	return g.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		OrganizationID: org.ID,
		CustomerID:     customerID,
		Plan:           planID,
		PriceID:        g.catalog.Lookup(planID).StripePriceID,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
	})
}

// CreateOrUpdateSubscription moves the organization onto planID, creating
// the provider subscription when none exists, and syncs the result.
func (g *Gateway) CreateOrUpdateSubscription(ctx context.Context, org *organizations.Organization, planID plans.PlanID) (organizations.ProviderSubscription, error) {
	if !g.catalog.Purchasable(planID) {
		return organizations.ProviderSubscription{}, fmt.Errorf("%w: %q", ErrInvalidPlan, planID)
	}
	priceID := g.catalog.Lookup(planID).StripePriceID

	var (
		remote organizations.ProviderSubscription
		err    error
	)
	if org.Subscription.HasStripeSubscription() {
		remote, err = g.provider.UpdateSubscriptionPrice(ctx, org.Subscription.StripeSubscriptionID, priceID)
	} else {
		var customerID string
		customerID, err = g.EnsureCustomer(ctx, org)
		if err != nil {
			return organizations.ProviderSubscription{}, err
		}
		remote, err = g.provider.CreateSubscription(ctx, customerID, priceID)
	}
	if err != nil {
		return organizations.ProviderSubscription{}, err
	}

	return remote, g.Sync(ctx, org, remote)
}

func (g *Gateway) SetCancelFlag(ctx context.Context, org *organizations.Organization, cancel bool) error {
	if !org.Subscription.HasStripeSubscription() {
		return ErrNoActiveSubscription
	}
	remote, err := g.provider.SetCancelAtPeriodEnd(ctx, org.Subscription.StripeSubscriptionID, cancel)
	if err != nil {
		return err
	}
	return g.Sync(ctx, org, remote)
}

// CancelNow ends the provider subscription immediately.
func (g *Gateway) CancelNow(ctx context.Context, org *organizations.Organization) error {
	if !org.Subscription.HasStripeSubscription() {
		return ErrNoActiveSubscription
	}
	remote, err := g.provider.CancelSubscription(ctx, org.Subscription.StripeSubscriptionID)
	if err != nil {
		return err
	}
	return g.Sync(ctx, org, remote)
}

// FetchRemote returns nil without error when the organization has no
// provider subscription.
func (g *Gateway) FetchRemote(ctx context.Context, org *organizations.Organization) (*organizations.ProviderSubscription, error) {
	if !org.Subscription.HasStripeSubscription() {
		return nil, nil
	}
	remote, err := g.provider.GetSubscription(ctx, org.Subscription.StripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	return &remote, nil
}

func (g *Gateway) OpenPortal(ctx context.Context, org *organizations.Organization, returnURL string) (string, error) {
	if !org.Subscription.HasStripeCustomer() {
		return "", ErrNoCustomer
	}
	return g.provider.CreatePortalSession(ctx, org.Subscription.StripeCustomerID, returnURL)
}

// ConfirmCheckout links a completed checkout session to the organization
// without waiting for the webhook.
func (g *Gateway) ConfirmCheckout(ctx context.Context, org *organizations.Organization, sessionID string) error {
	session, err := g.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Complete || session.SubscriptionID == "" {
		return fmt.Errorf("%w: session %s not complete", ErrInvalidCheckout, sessionID)
	}
	if session.CustomerID == "" || session.CustomerID != org.Subscription.StripeCustomerID {
		return fmt.Errorf("%w: session %s", ErrInvalidCheckout, sessionID)
	}

	remote, err := g.provider.GetSubscription(ctx, session.SubscriptionID)
	if err != nil {
		return err
	}
	return g.Sync(ctx, org, remote)
}

// Sync writes the provider state into the organization's snapshot.
func (g *Gateway) Sync(ctx context.Context, org *organizations.Organization, remote organizations.ProviderSubscription) error {
	err := g.apply(ctx, org, func(s organizations.Subscription) organizations.Subscription {
		return organizations.Sync(s, remote, g.catalog)
	})
	if err != nil {
		metrics.SubscriptionSyncs.WithLabelValues("error").Inc()
		return fmt.Errorf("sync subscription %s: %w", remote.ID, err)
	}

	metrics.SubscriptionSyncs.WithLabelValues("ok").Inc()
	g.logger.Info("subscription synced",
		zap.String("organization_id", org.ID),
		zap.String("subscription_id", remote.ID),
		zap.String("plan", string(org.Subscription.Plan)),
		zap.String("status", string(org.Subscription.Status)))
	return nil
}

// MarkCancelled records a provider-side deletion.
func (g *Gateway) MarkCancelled(ctx context.Context, org *organizations.Organization) error {
	return g.apply(ctx, org, organizations.MarkCancelled)
}

// apply runs fn against the current snapshot and saves it with a version
// check. On conflict the organization is reloaded and fn re-applied.
func (g *Gateway) apply(ctx context.Context, org *organizations.Organization, fn func(organizations.Subscription) organizations.Subscription) error {
	for attempt := 1; ; attempt++ {
		expected := org.Subscription.Version
		next := fn(org.Subscription)
		next.Version = expected

		err := g.store.SaveSubscription(ctx, org.ID, expected, next)
		if err == nil {
			next.Version = expected + 1
			org.Subscription = next
			return nil
		}
		if !errors.Is(err, organizations.ErrVersionConflict) || attempt == maxSaveAttempts {
			return err
		}

		metrics.SyncConflicts.Inc()
		g.logger.Warn("subscription version conflict, reloading",
			zap.String("organization_id", org.ID),
			zap.Int64("version", expected),
			zap.Int("attempt", attempt))

		fresh, err := g.store.Get(ctx, org.ID)
		if err != nil {
			return err
		}
		*org = *fresh
	}
}
