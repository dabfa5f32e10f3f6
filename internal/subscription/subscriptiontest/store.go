// Package subscriptiontest provides in-memory doubles for the subscription ports.
package subscriptiontest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
)

// MemoryStore implements organizations.Store, inventory.Store,
// subscription.UsageCounter and subscription.PaymentStore.
type MemoryStore struct {
	mu       sync.Mutex
	orgs     map[string]organizations.Organization
	counts   map[string]map[inventory.Collection]int64
	payments map[string]billing.Payment
	hardware []inventory.Hardware
	seq      int

	// BeforeSave runs before each SaveSubscription; tests use it to inject
	// concurrent writers.
	BeforeSave func(id string)
	Saves      int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:     map[string]organizations.Organization{},
		counts:   map[string]map[inventory.Collection]int64{},
		payments: map[string]billing.Payment{},
	}
}

func (m *MemoryStore) Create(_ context.Context, org *organizations.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = *org
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*organizations.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, organizations.ErrNotFound
	}
	return &org, nil
}

func (m *MemoryStore) FindByStripeSubscriptionID(_ context.Context, subscriptionID string) (*organizations.Organization, error) {
	return m.find(func(o organizations.Organization) bool {
		return subscriptionID != "" && o.Subscription.StripeSubscriptionID == subscriptionID
	})
}

func (m *MemoryStore) FindByStripeCustomerID(_ context.Context, customerID string) (*organizations.Organization, error) {
	return m.find(func(o organizations.Organization) bool {
		return customerID != "" && o.Subscription.StripeCustomerID == customerID
	})
}

func (m *MemoryStore) find(match func(organizations.Organization) bool) (*organizations.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if match(o) {
			return &o, nil
		}
	}
	return nil, organizations.ErrNotFound
}

func (m *MemoryStore) ListActive(_ context.Context) ([]organizations.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []organizations.Organization{}
	for _, o := range m.orgs {
		if o.IsActive {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) SaveSubscription(_ context.Context, id string, expectedVersion int64, sub organizations.Subscription) error {
	if m.BeforeSave != nil {
		m.BeforeSave(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return organizations.ErrNotFound
	}
	if org.Subscription.Version != expectedVersion {
		return organizations.ErrVersionConflict
	}
	sub.Version = expectedVersion + 1
	org.Subscription = sub
	m.orgs[id] = org
	m.Saves++
	return nil
}

func (m *MemoryStore) UpdateSettings(_ context.Context, id string, settings organizations.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return organizations.ErrNotFound
	}
	org.Settings = settings
	m.orgs[id] = org
	return nil
}

// SetCount fixes the count returned for one collection.
func (m *MemoryStore) SetCount(orgID string, c inventory.Collection, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[orgID] == nil {
		m.counts[orgID] = map[inventory.Collection]int64{}
	}
	m.counts[orgID][c] = n
}

// Count returns the fixed count when one was set, otherwise the stored
// hardware for that collection.
func (m *MemoryStore) Count(_ context.Context, orgID string, c inventory.Collection) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.counts[orgID][c]; ok {
		return n, nil
	}
	if c != inventory.CollectionHardware {
		return 0, nil
	}
	var n int64
	for _, h := range m.hardware {
		if h.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateHardware(_ context.Context, h *inventory.Hardware) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID == "" {
		m.seq++
		h.ID = fmt.Sprintf("hw-%d", m.seq)
	}
	m.hardware = append(m.hardware, *h)
	return nil
}

func (m *MemoryStore) ListHardware(_ context.Context, orgID string) ([]inventory.Hardware, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []inventory.Hardware{}
	for _, h := range m.hardware {
		if h.OrganizationID == orgID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteHardware(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.hardware {
		if h.OrganizationID == orgID && h.ID == id {
			m.hardware = append(m.hardware[:i], m.hardware[i+1:]...)
			return nil
		}
	}
	return inventory.ErrNotFound
}

func (m *MemoryStore) RecordPayment(_ context.Context, p billing.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.StripeInvoiceID] = p
	return nil
}

func (m *MemoryStore) ListPayments(_ context.Context, orgID string) ([]billing.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []billing.Payment{}
	for _, p := range m.payments {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StripeInvoiceID < out[j].StripeInvoiceID })
	return out, nil
}
