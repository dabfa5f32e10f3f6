package subscription_test

import (
	"context"
	"testing"
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/subscription"
	"asset-manager-api/internal/subscription/subscriptiontest"

	"github.com/stretchr/testify/require"
)

const (
	priceBasic = "price_basic"
	pricePro   = "price_pro"
	priceEnt   = "price_ent"
)

type fixture struct {
	store      *subscriptiontest.MemoryStore
	provider   *subscriptiontest.FakeProvider
	catalog    *plans.Catalog
	gateway    *subscription.Gateway
	service    *subscription.Service
	reconciler *subscription.Reconciler
	org        *organizations.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := plans.DefaultCatalog(plans.PriceRefs{Basic: priceBasic, Professional: pricePro, Enterprise: priceEnt})
	require.NoError(t, err)

	store := subscriptiontest.NewMemoryStore()
	provider := subscriptiontest.NewFakeProvider()
	gateway := subscription.NewGateway(store, provider, catalog, nil)

	org := organizations.New("Acme", "acme.io", time.Now(), 30*24*time.Hour, catalog)
	require.NoError(t, store.Create(context.Background(), &org))

	return &fixture{
		store:      store,
		provider:   provider,
		catalog:    catalog,
		gateway:    gateway,
		service:    subscription.NewService(gateway, catalog, store, store, nil),
		reconciler: subscription.NewReconciler(gateway, store, store, nil),
		org:        &org,
	}
}

// reload returns the persisted copy of the fixture organization.
func (f *fixture) reload(t *testing.T) *organizations.Organization {
	t.Helper()
	org, err := f.store.Get(context.Background(), f.org.ID)
	require.NoError(t, err)
	return org
}

// subscribe puts the fixture organization on a paid plan through the provider.
func (f *fixture) subscribe(t *testing.T, priceID string) organizations.ProviderSubscription {
	t.Helper()
	ctx := context.Background()
	customerID, err := f.gateway.EnsureCustomer(ctx, f.org)
	require.NoError(t, err)
	remote, err := f.provider.CreateSubscription(ctx, customerID, priceID)
	require.NoError(t, err)
	require.NoError(t, f.gateway.Sync(ctx, f.org, remote))
	f.provider.Calls = nil
	return remote
}
