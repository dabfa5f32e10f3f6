package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/organizations"

	"go.uber.org/zap"
)

// Reconciler applies provider events to organization snapshots. Every
// handler is a pure function of the event and the provider state, so
// redelivery converges.
type Reconciler struct {
	gateway  *Gateway
	store    organizations.Store
	payments PaymentStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewReconciler(gateway *Gateway, store organizations.Store, payments PaymentStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{gateway: gateway, store: store, payments: payments, logger: logger, now: time.Now}
}

// Handle processes ev. An unknown organization is not an error: the
// provider may know customers this deployment does not.
func (r *Reconciler) Handle(ctx context.Context, ev Event) (Outcome, error) {
	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return r.subscriptionChanged(ctx, ev)
	case EventSubscriptionDeleted:
		return r.subscriptionDeleted(ctx, ev)
	case EventInvoicePaymentSucceeded:
		return r.paymentSucceeded(ctx, ev)
	case EventInvoicePaymentFailed:
		return r.paymentFailed(ctx, ev)
	default:
		r.logger.Debug("stripe event ignored", zap.String("event_id", ev.ID), zap.String("type", ev.Type))
		return OutcomeIgnored, nil
	}
}

func (r *Reconciler) subscriptionChanged(ctx context.Context, ev Event) (Outcome, error) {
	if ev.Subscription == nil {
		return "", fmt.Errorf("%w: %s without subscription", ErrMalformedEvent, ev.Type)
	}
	sub := *ev.Subscription

	org, err := r.store.FindByStripeSubscriptionID(ctx, sub.ID)
	if errors.Is(err, organizations.ErrNotFound) && ev.Type == EventSubscriptionCreated && sub.CustomerID != "" {
		// Checkout-created subscriptions are not linked yet; the customer is.
		org, err = r.store.FindByStripeCustomerID(ctx, sub.CustomerID)
	}
	if outcome, done, err := r.lookupResult(ev, err); done {
		return outcome, err
	}

	if err := r.gateway.Sync(ctx, org, sub); err != nil {
		return "", err
	}
	return OutcomeSynced, nil
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, ev Event) (Outcome, error) {
	if ev.Subscription == nil {
		return "", fmt.Errorf("%w: %s without subscription", ErrMalformedEvent, ev.Type)
	}

	org, err := r.store.FindByStripeSubscriptionID(ctx, ev.Subscription.ID)
	if outcome, done, err := r.lookupResult(ev, err); done {
		return outcome, err
	}

	if err := r.gateway.MarkCancelled(ctx, org); err != nil {
		return "", fmt.Errorf("mark %s cancelled: %w", org.ID, err)
	}
	r.logger.Info("subscription cancelled by provider",
		zap.String("organization_id", org.ID),
		zap.String("subscription_id", ev.Subscription.ID))
	return OutcomeCancelled, nil
}

func (r *Reconciler) paymentSucceeded(ctx context.Context, ev Event) (Outcome, error) {
	if ev.Invoice == nil {
		return "", fmt.Errorf("%w: %s without invoice", ErrMalformedEvent, ev.Type)
	}
	inv := *ev.Invoice

	org, err := r.store.FindByStripeCustomerID(ctx, inv.CustomerID)
	if outcome, done, err := r.lookupResult(ev, err); done {
		return outcome, err
	}

	if inv.SubscriptionID != "" {
		remote, err := r.gateway.provider.GetSubscription(ctx, inv.SubscriptionID)
		if err != nil {
			return "", fmt.Errorf("refetch subscription %s: %w", inv.SubscriptionID, err)
		}
		if err := r.gateway.Sync(ctx, org, remote); err != nil {
			return "", err
		}
	}

	if err := r.record(ctx, org, inv, billing.PaymentSucceeded, inv.AmountPaid); err != nil {
		return "", err
	}
	return OutcomeSynced, nil
}

func (r *Reconciler) paymentFailed(ctx context.Context, ev Event) (Outcome, error) {
	if ev.Invoice == nil {
		return "", fmt.Errorf("%w: %s without invoice", ErrMalformedEvent, ev.Type)
	}
	inv := *ev.Invoice

	org, err := r.store.FindByStripeCustomerID(ctx, inv.CustomerID)
	if outcome, done, err := r.lookupResult(ev, err); done {
		return outcome, err
	}

	r.logger.Warn("payment failed",
		zap.String("organization_id", org.ID),
		zap.String("organization", org.Name),
		zap.String("invoice_id", inv.ID),
		zap.Int64("amount_due", inv.AmountDue))

	if err := r.record(ctx, org, inv, billing.PaymentFailed, inv.AmountDue); err != nil {
		return "", err
	}
	return OutcomePaymentFailed, nil
}

// lookupResult turns an organization lookup error into a final outcome.
// done is false when processing should continue.
func (r *Reconciler) lookupResult(ev Event, err error) (Outcome, bool, error) {
	switch {
	case err == nil:
		return "", false, nil
	case errors.Is(err, organizations.ErrNotFound):
		r.logger.Info("stripe event for unknown organization",
			zap.String("event_id", ev.ID),
			zap.String("type", ev.Type))
		return OutcomeOrgNotFound, true, nil
	default:
		return "", true, fmt.Errorf("find organization for %s: %w", ev.ID, err)
	}
}

func (r *Reconciler) record(ctx context.Context, org *organizations.Organization, inv Invoice, status string, amount int64) error {
	if r.payments == nil || inv.ID == "" {
		return nil
	}
	err := r.payments.RecordPayment(ctx, billing.Payment{
		OrganizationID:       org.ID,
		StripeInvoiceID:      inv.ID,
		StripeSubscriptionID: inv.SubscriptionID,
		Plan:                 org.Subscription.Plan,
		AmountCents:          amount,
		Currency:             inv.Currency,
		Status:               status,
		ReceiptURL:           inv.ReceiptURL,
		CreatedAt:            r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record payment %s: %w", inv.ID, err)
	}
	return nil
}
