package main

import (
	"context"
	"fmt"
	"time"

	"asset-manager-api/config"
	"asset-manager-api/database"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/infra/eventledger"
	mongostore "asset-manager-api/internal/infra/mongo"
	"asset-manager-api/internal/infra/postgres"
	stripeinfra "asset-manager-api/internal/infra/stripe"
	"asset-manager-api/internal/subscription"

	"go.uber.org/zap"
)

// backend is everything one store driver provides.
type backend interface {
	organizations.Store
	inventory.Store
	subscription.UsageCounter
	subscription.PaymentStore
}

type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	catalog    *plans.Catalog
	store      backend
	gateway    *subscription.Gateway
	service    *subscription.Service
	reconciler *subscription.Reconciler
	ledger     eventledger.Ledger
	closers    []func(context.Context) error
}

func newCatalog(cfg *config.Config) (*plans.Catalog, error) {
	return plans.DefaultCatalog(plans.PriceRefs{
		Basic:        cfg.StripeBasicPriceID,
		Professional: cfg.StripeProfessionalPriceID,
		Enterprise:   cfg.StripeEnterprisePriceID,
	})
}

// newApp connects the selected store, the billing provider and the event
// ledger. Call Close when done.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, catalog: catalog}

	if err := a.openStore(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	if err := a.openLedger(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	provider := stripeinfra.New(stripeinfra.Config{
		SecretKey:         cfg.StripeSecretKey,
		APIURL:            cfg.StripeAPIURL,
		MaxNetworkRetries: cfg.StripeMaxNetworkRetries,
		AppEnv:            cfg.AppEnv,
		Logger:            logger.Named("stripe"),
	})

	a.gateway = subscription.NewGateway(a.store, provider, catalog, logger.Named("gateway"))
	a.service = subscription.NewService(a.gateway, catalog, a.store, a.store, logger.Named("subscription"))
	a.reconciler = subscription.NewReconciler(a.gateway, a.store, a.store, logger.Named("reconciler"))
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.InitMongo(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		store := mongostore.New(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		a.store = store
	default:
		db, err := database.InitDB(a.cfg.DBURL, a.logger)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		}
		a.store = postgres.New(db)
	}
	return nil
}

// openLedger shares webhook dedupe through Redis when configured.
func (a *app) openLedger(ctx context.Context) error {
	if a.cfg.RedisURL == "" {
		a.logger.Warn("REDIS_URL not set, webhook dedupe is per process")
		a.ledger = eventledger.NewMemoryLedger(0, 0)
		return nil
	}
	client, err := eventledger.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.ledger = eventledger.NewRedisLedger(client)
	return nil
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close resource failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) trialPeriod() time.Duration {
	return time.Duration(a.cfg.TrialDays) * 24 * time.Hour
}

func (a *app) organization(ctx context.Context, id string) (*organizations.Organization, error) {
	org, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("organization %s: %w", id, err)
	}
	return org, nil
}
