package subscription_test

import (
	"context"
	"errors"
	"testing"

	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePlan_AlreadyOnPlanMakesNoCalls(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ChangePlan(context.Background(), f.org, plans.Free, "", "")
	assert.ErrorIs(t, err, subscription.ErrAlreadyOnPlan)
	assert.Empty(t, f.provider.Calls)

	f.subscribe(t, pricePro)
	_, err = f.service.ChangePlan(context.Background(), f.org, plans.Professional, "", "")
	assert.ErrorIs(t, err, subscription.ErrAlreadyOnPlan)
	assert.Empty(t, f.provider.Calls)
}

func TestChangePlan_RejectsUnpurchasablePlans(t *testing.T) {
	f := newFixture(t)
	f.subscribe(t, priceBasic)

	for _, p := range []plans.PlanID{plans.Free, "platinum"} {
		_, err := f.service.ChangePlan(context.Background(), f.org, p, "", "")
		assert.ErrorIs(t, err, subscription.ErrInvalidPlan, "plan %s", p)
	}
	assert.Empty(t, f.provider.Calls)
}

func TestChangePlan_FromFreeReturnsCheckout(t *testing.T) {
	f := newFixture(t)
	before := f.reload(t).Subscription

	res, err := f.service.ChangePlan(context.Background(), f.org, plans.Enterprise, "https://app/ok", "https://app/cancel")
	require.NoError(t, err)
	assert.Equal(t, subscription.ActionCheckout, res.Action)
	require.NotNil(t, res.Checkout)
	assert.NotEmpty(t, res.Checkout.URL)

	after := f.reload(t).Subscription
	assert.Equal(t, before.Plan, after.Plan)
	assert.Equal(t, before.MaxAssets, after.MaxAssets)
	assert.Equal(t, before.Features, after.Features)
	assert.Equal(t, before.Status, after.Status)
	assert.Empty(t, after.StripeSubscriptionID)
	assert.Equal(t, "cus_"+f.org.ID, after.StripeCustomerID)
}

func TestChangePlan_PaidToPaidUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	remote := f.subscribe(t, priceBasic)

	res, err := f.service.ChangePlan(context.Background(), f.org, plans.Professional, "", "")
	require.NoError(t, err)
	assert.Equal(t, subscription.ActionUpdated, res.Action)
	assert.Nil(t, res.Checkout)
	assert.Equal(t, []string{"UpdateSubscriptionPrice"}, f.provider.Calls)

	stored := f.reload(t).Subscription
	assert.Equal(t, plans.Professional, stored.Plan)
	assert.Equal(t, 500, stored.MaxAssets)
	assert.Equal(t, remote.ID, stored.StripeSubscriptionID)
	assert.Equal(t, pricePro, stored.StripePriceID)
	assert.Equal(t, f.provider.PeriodEnd, *stored.CurrentPeriodEnd)
}

func TestCancelAndReactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.subscribe(t, priceBasic)

	require.NoError(t, f.service.Cancel(ctx, f.org, true))
	stored := f.reload(t).Subscription
	assert.True(t, stored.CancelAtPeriodEnd)
	assert.Equal(t, organizations.StatusActive, stored.Status)

	require.NoError(t, f.service.Reactivate(ctx, f.org))
	assert.False(t, f.reload(t).Subscription.CancelAtPeriodEnd)
}

func TestCancel_Immediately(t *testing.T) {
	f := newFixture(t)
	f.subscribe(t, priceBasic)

	require.NoError(t, f.service.Cancel(context.Background(), f.org, false))
	assert.Equal(t, []string{"CancelSubscription"}, f.provider.Calls)
	assert.Equal(t, organizations.StatusCancelled, f.reload(t).Subscription.Status)
}

func TestGuardsWithoutProviderState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.Cancel(ctx, f.org, true), subscription.ErrNoActiveSubscription)
	assert.ErrorIs(t, f.service.Reactivate(ctx, f.org), subscription.ErrNoSubscription)
	_, err := f.service.OpenPortal(ctx, f.org, "https://app")
	assert.ErrorIs(t, err, subscription.ErrNoCustomer)
	assert.ErrorIs(t, f.service.Resync(ctx, f.org), subscription.ErrNoSubscription)
	assert.Empty(t, f.provider.Calls)
}

func TestEnsureCustomer_CreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)
	id2, err := f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, f.provider.CallCount("CreateCustomer"))
	assert.Equal(t, id1, f.reload(t).Subscription.StripeCustomerID)
}

func TestStartCheckout_InvalidPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.StartCheckout(context.Background(), f.org, plans.Free, "", "")
	assert.ErrorIs(t, err, subscription.ErrInvalidPlan)
	assert.Empty(t, f.provider.Calls)
}

func TestProviderFailureLeavesSnapshot(t *testing.T) {
	f := newFixture(t)
	f.subscribe(t, priceBasic)
	before := f.reload(t).Subscription

	f.provider.Err = errors.New("connection reset")
	_, err := f.service.ChangePlan(context.Background(), f.org, plans.Enterprise, "", "")
	assert.ErrorIs(t, err, subscription.ErrProviderUnavailable)
	assert.Equal(t, before, f.reload(t).Subscription)
}

func TestSync_RetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	remote := f.subscribe(t, priceBasic)
	remote.PriceID = priceEnt

	f.store.BeforeSave = func(id string) {
		f.store.BeforeSave = nil
		concurrent, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		require.NoError(t, f.store.SaveSubscription(ctx, id, concurrent.Subscription.Version, concurrent.Subscription))
	}
	stale := *f.org
	require.NoError(t, f.gateway.Sync(ctx, &stale, remote))

	stored := f.reload(t).Subscription
	assert.Equal(t, plans.Enterprise, stored.Plan)
	assert.Equal(t, stale.Subscription.Version, stored.Version)
}

func TestSync_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	remote := f.subscribe(t, priceBasic)

	var bump func(string)
	bump = func(id string) {
		f.store.BeforeSave = nil
		o, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		require.NoError(t, f.store.SaveSubscription(ctx, id, o.Subscription.Version, o.Subscription))
		f.store.BeforeSave = bump
	}
	f.store.BeforeSave = bump

	err := f.gateway.Sync(ctx, f.org, remote)
	assert.ErrorIs(t, err, organizations.ErrVersionConflict)
}

func TestDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.service.Details(ctx, f.org)
	assert.Nil(t, d.Remote)
	assert.True(t, d.Policy.Active)

	remote := f.subscribe(t, priceBasic)
	d = f.service.Details(ctx, f.org)
	require.NotNil(t, d.Remote)
	assert.Equal(t, remote.ID, d.Remote.ID)
	assert.Equal(t, f.provider.PeriodEnd.Unix(), d.Remote.CurrentPeriodEnd)

	f.provider.Err = errors.New("timeout")
	d = f.service.Details(ctx, f.org)
	assert.Nil(t, d.Remote)
	assert.Equal(t, plans.Basic, d.Subscription.Plan)
}

func TestConfirmCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.StartCheckout(ctx, f.org, plans.Professional, "", "")
	require.NoError(t, err)

	err = f.service.ConfirmCheckout(ctx, f.org, session.ID)
	assert.ErrorIs(t, err, subscription.ErrInvalidCheckout)

	f.provider.CompleteSession(session.ID, pricePro)
	require.NoError(t, f.service.ConfirmCheckout(ctx, f.org, session.ID))
	assert.Equal(t, plans.Professional, f.reload(t).Subscription.Plan)
}

func TestConfirmCheckout_ForeignSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := organizations.New("Other", "other.io", f.provider.PeriodStart, 0, f.catalog)
	require.NoError(t, f.store.Create(ctx, &other))
	session, err := f.service.StartCheckout(ctx, &other, plans.Basic, "", "")
	require.NoError(t, err)
	f.provider.CompleteSession(session.ID, priceBasic)

	_, err = f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)
	err = f.service.ConfirmCheckout(ctx, f.org, session.ID)
	assert.ErrorIs(t, err, subscription.ErrInvalidCheckout)
	assert.Equal(t, plans.Free, f.reload(t).Subscription.Plan)
}

func TestUsage(t *testing.T) {
	f := newFixture(t)
	f.store.SetCount(f.org.ID, inventory.CollectionHardware, 7)
	f.store.SetCount(f.org.ID, inventory.CollectionSoftware, 30)
	f.store.SetCount(f.org.ID, inventory.CollectionUsers, 4)
	f.store.SetCount(f.org.ID, inventory.CollectionTickets, 2)

	u, err := f.service.Usage(context.Background(), f.org)
	require.NoError(t, err)
	assert.Equal(t, subscription.Usage{Hardware: 7, Software: 30, Users: 4, MaxAssets: 10, UsagePercentage: 70}, u)

	s, err := f.service.Stats(context.Background(), f.org)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Tickets)
	assert.Equal(t, int64(7), s.Assets)
	assert.Equal(t, 70, s.UsagePercentage)
}

func TestUsagePercentage(t *testing.T) {
	tests := []struct {
		assets int64
		max    int
		want   int
	}{
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{15, 10, 150},
		{5, 0, 100},
		{5, -1, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, subscription.UsagePercentage(tt.assets, tt.max), "%d/%d", tt.assets, tt.max)
	}
}

func TestLinkSubscriptionAndPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.Put(organizations.ProviderSubscription{ID: "sub_legacy", CustomerID: "cus_legacy", PriceID: priceEnt, Status: organizations.StatusActive})

	require.NoError(t, f.service.LinkSubscription(ctx, f.org, "sub_legacy"))
	stored := f.reload(t).Subscription
	assert.Equal(t, plans.Enterprise, stored.Plan)
	assert.Equal(t, "cus_legacy", stored.StripeCustomerID)

	payments, err := f.service.Payments(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
