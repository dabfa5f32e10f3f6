package subscription_test

import (
	"context"
	"testing"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_SubscriptionUpdated(t *testing.T) {
	f := newFixture(t)
	remote := f.subscribe(t, priceBasic)
	remote.PriceID = pricePro
	remote.CancelAtPeriodEnd = true

	ev := subscription.Event{ID: "evt_1", Type: subscription.EventSubscriptionUpdated, Subscription: &remote}
	outcome, err := f.reconciler.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomeSynced, outcome)

	first := f.reload(t).Subscription
	assert.Equal(t, plans.Professional, first.Plan)
	assert.True(t, first.CancelAtPeriodEnd)

	// redelivery converges to the same snapshot
	_, err = f.reconciler.Handle(context.Background(), ev)
	require.NoError(t, err)
	second := f.reload(t).Subscription
	first.Version, second.Version = 0, 0
	assert.Equal(t, first, second)
}

func TestReconcile_CreatedLinksByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID, err := f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)

	remote := organizations.ProviderSubscription{ID: "sub_new", CustomerID: customerID, PriceID: priceEnt, Status: organizations.StatusActive}
	outcome, err := f.reconciler.Handle(ctx, subscription.Event{ID: "evt_c", Type: subscription.EventSubscriptionCreated, Subscription: &remote})
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomeSynced, outcome)

	stored := f.reload(t).Subscription
	assert.Equal(t, "sub_new", stored.StripeSubscriptionID)
	assert.Equal(t, plans.Enterprise, stored.Plan)
}

func TestReconcile_UpdatedDoesNotLinkByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID, err := f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)

	remote := organizations.ProviderSubscription{ID: "sub_other", CustomerID: customerID, PriceID: priceEnt, Status: organizations.StatusActive}
	outcome, err := f.reconciler.Handle(ctx, subscription.Event{ID: "evt_u", Type: subscription.EventSubscriptionUpdated, Subscription: &remote})
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomeOrgNotFound, outcome)
	assert.Equal(t, plans.Free, f.reload(t).Subscription.Plan)
}

func TestReconcile_UnknownOrganizationIsNoop(t *testing.T) {
	f := newFixture(t)
	saves := f.store.Saves

	remote := organizations.ProviderSubscription{ID: "sub_ghost", PriceID: priceBasic, Status: organizations.StatusActive}
	for _, typ := range []string{subscription.EventSubscriptionUpdated, subscription.EventSubscriptionDeleted} {
		outcome, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt", Type: typ, Subscription: &remote})
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeOrgNotFound, outcome)
	}

	inv := subscription.Invoice{ID: "in_1", CustomerID: "cus_ghost"}
	for _, typ := range []string{subscription.EventInvoicePaymentSucceeded, subscription.EventInvoicePaymentFailed} {
		outcome, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt", Type: typ, Invoice: &inv})
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeOrgNotFound, outcome)
	}
	assert.Equal(t, saves, f.store.Saves)
}

func TestReconcile_SubscriptionDeleted(t *testing.T) {
	f := newFixture(t)
	remote := f.subscribe(t, pricePro)

	outcome, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt_d", Type: subscription.EventSubscriptionDeleted, Subscription: &remote})
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomeCancelled, outcome)

	stored := f.reload(t).Subscription
	assert.Equal(t, organizations.StatusCancelled, stored.Status)
	assert.Equal(t, plans.Professional, stored.Plan)
	assert.Equal(t, 500, stored.MaxAssets)
	assert.Empty(t, f.provider.Calls)
}

func TestReconcile_PaymentSucceededRefetches(t *testing.T) {
	f := newFixture(t)
	remote := f.subscribe(t, priceBasic)

	// provider moved on without a subscription event reaching us
	remote.PriceID = priceEnt
	f.provider.Put(remote)

	inv := subscription.Invoice{
		ID:             "in_1",
		CustomerID:     remote.CustomerID,
		SubscriptionID: remote.ID,
		AmountPaid:     29900,
		Currency:       "usd",
	}
	ev := subscription.Event{ID: "evt_p", Type: subscription.EventInvoicePaymentSucceeded, Invoice: &inv}
	for i := 0; i < 2; i++ {
		outcome, err := f.reconciler.Handle(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeSynced, outcome)
	}

	assert.Equal(t, 2, f.provider.CallCount("GetSubscription"))
	assert.Equal(t, plans.Enterprise, f.reload(t).Subscription.Plan)

	payments, err := f.store.ListPayments(context.Background(), f.org.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, billing.PaymentSucceeded, payments[0].Status)
	assert.Equal(t, int64(29900), payments[0].AmountCents)
	assert.Equal(t, plans.Enterprise, payments[0].Plan)
}

func TestReconcile_PaymentFailedOnlyLogs(t *testing.T) {
	f := newFixture(t)
	remote := f.subscribe(t, priceBasic)
	before := f.reload(t).Subscription

	inv := subscription.Invoice{ID: "in_2", CustomerID: remote.CustomerID, SubscriptionID: remote.ID, AmountDue: 2900}
	outcome, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt_f", Type: subscription.EventInvoicePaymentFailed, Invoice: &inv})
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomePaymentFailed, outcome)
	assert.Equal(t, before, f.reload(t).Subscription)
	assert.Empty(t, f.provider.Calls)

	payments, err := f.store.ListPayments(context.Background(), f.org.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, billing.PaymentFailed, payments[0].Status)
}

func TestReconcile_IgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	outcome, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt_x", Type: "charge.refunded"})
	require.NoError(t, err)
	assert.Equal(t, subscription.OutcomeIgnored, outcome)
}

func TestReconcile_MalformedEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt_m", Type: subscription.EventSubscriptionUpdated})
	assert.ErrorIs(t, err, subscription.ErrMalformedEvent)

	_, err = f.reconciler.Handle(context.Background(), subscription.Event{ID: "evt_m", Type: subscription.EventInvoicePaymentFailed})
	assert.ErrorIs(t, err, subscription.ErrMalformedEvent)
}
