package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	organizationsCollection = "organizations"
	paymentsCollection      = "payments"
)

// Store keeps organizations with their embedded subscription as documents.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

var _ organizations.Store = (*Store)(nil)

// EnsureIndexes creates the lookup indexes used by the webhook reconciler.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.orgs().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subscription.stripeSubscriptionId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "subscription.stripeCustomerId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create organization indexes: %w", err)
	}
	for _, c := range []inventory.Collection{inventory.CollectionHardware, inventory.CollectionSoftware, inventory.CollectionUsers, inventory.CollectionTickets, inventory.CollectionTelemetry} {
		if _, err := s.db.Collection(string(c)).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "organization", Value: 1}}}); err != nil {
			return fmt.Errorf("create %s index: %w", c, err)
		}
	}
	return nil
}

func (s *Store) orgs() *mongo.Collection { return s.db.Collection(organizationsCollection) }

func (s *Store) Create(ctx context.Context, org *organizations.Organization) error {
	if _, err := s.orgs().InsertOne(ctx, org); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*organizations.Organization, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*organizations.Organization, error) {
	if subscriptionID == "" {
		return nil, organizations.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"subscription.stripeSubscriptionId": subscriptionID})
}

func (s *Store) FindByStripeCustomerID(ctx context.Context, customerID string) (*organizations.Organization, error) {
	if customerID == "" {
		return nil, organizations.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"subscription.stripeCustomerId": customerID})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*organizations.Organization, error) {
	var org organizations.Organization
	err := s.orgs().FindOne(ctx, filter).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, organizations.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return &org, nil
}

func (s *Store) ListActive(ctx context.Context) ([]organizations.Organization, error) {
	cur, err := s.orgs().Find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	orgs := []organizations.Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

// SaveSubscription replaces the embedded subscription document when its
// version still matches.
func (s *Store) SaveSubscription(ctx context.Context, id string, expectedVersion int64, sub organizations.Subscription) error {
	sub.Version = expectedVersion + 1
	res, err := s.orgs().UpdateOne(ctx,
		bson.M{"_id": id, "subscription.version": expectedVersion},
		bson.M{"$set": bson.M{"subscription": sub, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.orgs().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	if n == 0 {
		return organizations.ErrNotFound
	}
	return organizations.ErrVersionConflict
}

func (s *Store) UpdateSettings(ctx context.Context, id string, settings organizations.Settings) error {
	res, err := s.orgs().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"settings": settings, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if res.MatchedCount == 0 {
		return organizations.ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context, organizationID string, c inventory.Collection) (int64, error) {
	n, err := s.db.Collection(string(c)).CountDocuments(ctx, bson.M{"organization": organizationID})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

// RecordPayment replaces the payment document keyed by invoice id.
func (s *Store) RecordPayment(ctx context.Context, p billing.Payment) error {
	_, err := s.db.Collection(paymentsCollection).ReplaceOne(ctx,
		bson.M{"_id": p.StripeInvoiceID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, organizationID string) ([]billing.Payment, error) {
	cur, err := s.db.Collection(paymentsCollection).Find(ctx,
		bson.M{"organization": organizationID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	payments := []billing.Payment{}
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *Store) CreateHardware(ctx context.Context, h *inventory.Hardware) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	if _, err := s.db.Collection(string(inventory.CollectionHardware)).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("create hardware: %w", err)
	}
	return nil
}

func (s *Store) ListHardware(ctx context.Context, organizationID string) ([]inventory.Hardware, error) {
	cur, err := s.db.Collection(string(inventory.CollectionHardware)).Find(ctx,
		bson.M{"organization": organizationID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list hardware: %w", err)
	}
	items := []inventory.Hardware{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("list hardware: %w", err)
	}
	return items, nil
}

func (s *Store) DeleteHardware(ctx context.Context, organizationID, id string) error {
	res, err := s.db.Collection(string(inventory.CollectionHardware)).DeleteOne(ctx, bson.M{"_id": id, "organization": organizationID})
	if err != nil {
		return fmt.Errorf("delete hardware: %w", err)
	}
	if res.DeletedCount == 0 {
		return inventory.ErrNotFound
	}
	return nil
}
