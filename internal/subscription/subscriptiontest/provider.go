package subscriptiontest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/subscription"
)

// FakeProvider is a scriptable subscription.Provider that records calls.
type FakeProvider struct {
	mu sync.Mutex

	Subscriptions map[string]organizations.ProviderSubscription
	Sessions      map[string]subscription.CheckoutSession
	Calls         []string
	Err           error

	Prices []subscription.Price

	PeriodStart time.Time
	PeriodEnd   time.Time

	nextID int
}

// NewFakeProvider starts new subscriptions on a one month period beginning now.
func NewFakeProvider() *FakeProvider {
	start := time.Now().UTC().Truncate(time.Second)
	return &FakeProvider{
		Subscriptions: map[string]organizations.ProviderSubscription{},
		Sessions:      map[string]subscription.CheckoutSession{},
		PeriodStart:   start,
		PeriodEnd:     start.AddDate(0, 1, 0),
	}
}

func (f *FakeProvider) call(name string) error {
	f.Calls = append(f.Calls, name)
	if f.Err != nil {
		return fmt.Errorf("%w: %w", subscription.ErrProviderUnavailable, f.Err)
	}
	return nil
}

func (f *FakeProvider) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

// CallCount returns how many times name was invoked.
func (f *FakeProvider) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *FakeProvider) CreateCustomer(_ context.Context, org organizations.Organization) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateCustomer"); err != nil {
		return "", err
	}
	return "cus_" + org.ID, nil
}

func (f *FakeProvider) CreateCheckoutSession(_ context.Context, req subscription.CheckoutRequest) (subscription.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateCheckoutSession"); err != nil {
		return subscription.CheckoutSession{}, err
	}
	id := f.id("cs")
	s := subscription.CheckoutSession{ID: id, URL: "https://checkout.test/" + id, CustomerID: req.CustomerID}
	f.Sessions[id] = s
	return s, nil
}

func (f *FakeProvider) GetCheckoutSession(_ context.Context, sessionID string) (subscription.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetCheckoutSession"); err != nil {
		return subscription.CheckoutSession{}, err
	}
	s, ok := f.Sessions[sessionID]
	if !ok {
		return subscription.CheckoutSession{}, fmt.Errorf("%w: no such session %s", subscription.ErrProviderUnavailable, sessionID)
	}
	return s, nil
}

// CompleteSession marks a checkout session paid and creates its subscription.
func (f *FakeProvider) CompleteSession(sessionID, priceID string) organizations.ProviderSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.Sessions[sessionID]
	sub := f.newSubscription(s.CustomerID, priceID)
	s.SubscriptionID = sub.ID
	s.Complete = true
	f.Sessions[sessionID] = s
	return sub
}

func (f *FakeProvider) newSubscription(customerID, priceID string) organizations.ProviderSubscription {
	sub := organizations.ProviderSubscription{
		ID:                 f.id("sub"),
		CustomerID:         customerID,
		PriceID:            priceID,
		Status:             organizations.StatusActive,
		CurrentPeriodStart: f.PeriodStart,
		CurrentPeriodEnd:   f.PeriodEnd,
	}
	f.Subscriptions[sub.ID] = sub
	return sub
}

func (f *FakeProvider) CreateSubscription(_ context.Context, customerID, priceID string) (organizations.ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateSubscription"); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return f.newSubscription(customerID, priceID), nil
}

func (f *FakeProvider) mutate(name, id string, fn func(*organizations.ProviderSubscription)) (organizations.ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(name); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	sub, ok := f.Subscriptions[id]
	if !ok {
		return organizations.ProviderSubscription{}, fmt.Errorf("%w: no such subscription %s", subscription.ErrProviderUnavailable, id)
	}
	fn(&sub)
	f.Subscriptions[id] = sub
	return sub, nil
}

func (f *FakeProvider) UpdateSubscriptionPrice(_ context.Context, subscriptionID, priceID string) (organizations.ProviderSubscription, error) {
	return f.mutate("UpdateSubscriptionPrice", subscriptionID, func(s *organizations.ProviderSubscription) {
		s.PriceID = priceID
	})
}

func (f *FakeProvider) SetCancelAtPeriodEnd(_ context.Context, subscriptionID string, cancel bool) (organizations.ProviderSubscription, error) {
	return f.mutate("SetCancelAtPeriodEnd", subscriptionID, func(s *organizations.ProviderSubscription) {
		s.CancelAtPeriodEnd = cancel
	})
}

func (f *FakeProvider) CancelSubscription(_ context.Context, subscriptionID string) (organizations.ProviderSubscription, error) {
	return f.mutate("CancelSubscription", subscriptionID, func(s *organizations.ProviderSubscription) {
		s.Status = organizations.StatusCancelled
	})
}

func (f *FakeProvider) GetSubscription(_ context.Context, subscriptionID string) (organizations.ProviderSubscription, error) {
	return f.mutate("GetSubscription", subscriptionID, func(*organizations.ProviderSubscription) {})
}

func (f *FakeProvider) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreatePortalSession"); err != nil {
		return "", err
	}
	return "https://portal.test/" + customerID + "?return=" + returnURL, nil
}

func (f *FakeProvider) ListPrices(context.Context) ([]subscription.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListPrices"); err != nil {
		return nil, err
	}
	return append([]subscription.Price(nil), f.Prices...), nil
}

// Put seeds a provider subscription.
func (f *FakeProvider) Put(sub organizations.ProviderSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Subscriptions[sub.ID] = sub
}
