package subscription

import (
	"context"
	"time"

	"asset-manager-api/internal/domain/access"
	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/infra/metrics"

	"go.uber.org/zap"
)

const (
	ActionCheckout = "checkout"
	ActionUpdated  = "updated"
)

// Service orchestrates user-facing subscription operations.
type Service struct {
	gateway  *Gateway
	catalog  *plans.Catalog
	counter  UsageCounter
	payments PaymentStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(gateway *Gateway, catalog *plans.Catalog, counter UsageCounter, payments PaymentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:  gateway,
		catalog:  catalog,
		counter:  counter,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Catalog() *plans.Catalog { return s.catalog }

func (s *Service) Plans() []plans.Plan { return s.catalog.Plans() }

// RemoteView is the provider's state as reported next to the local snapshot.
type RemoteView struct {
	ID                 string               `json:"id"`
	Status             organizations.Status `json:"status"`
	CurrentPeriodStart int64                `json:"current_period_start"`
	CurrentPeriodEnd   int64                `json:"current_period_end"`
	CancelAtPeriodEnd  bool                 `json:"cancel_at_period_end"`
}

type Details struct {
	Subscription organizations.Subscription `json:"subscription"`
	Policy       access.Policy              `json:"policy"`
	Remote       *RemoteView                `json:"stripeSubscription"`
}

// Details reports the local snapshot and, when reachable, the provider's
// view. A provider failure is logged and reported as a missing remote.
func (s *Service) Details(ctx context.Context, org *organizations.Organization) Details {
	d := Details{
		Subscription: org.Subscription,
		Policy:       access.ComputePolicy(s.now(), org.Subscription),
	}

	remote, err := s.gateway.FetchRemote(ctx, org)
	if err != nil {
		s.logger.Warn("fetch remote subscription failed",
			zap.String("organization_id", org.ID),
			zap.Error(err))
		return d
	}
	if remote != nil {
		d.Remote = &RemoteView{
			ID:                 remote.ID,
			Status:             remote.Status,
			CurrentPeriodStart: unixOrZero(remote.CurrentPeriodStart),
			CurrentPeriodEnd:   unixOrZero(remote.CurrentPeriodEnd),
			CancelAtPeriodEnd:  remote.CancelAtPeriodEnd,
		}
	}
	return d
}

func (s *Service) StartCheckout(ctx context.Context, org *organizations.Organization, planID plans.PlanID, successURL, cancelURL string) (CheckoutSession, error) {
	return s.gateway.StartCheckout(ctx, org, planID, successURL, cancelURL)
}

type ChangeResult struct {
	Action       string                     `json:"action"`
	Checkout     *CheckoutSession           `json:"checkout,omitempty"`
	Subscription organizations.Subscription `json:"subscription"`
}

// ChangePlan moves the organization to requested. From the free plan a
// checkout is started and the snapshot is left alone; otherwise the
// provider subscription is updated in place and synced.
func (s *Service) ChangePlan(ctx context.Context, org *organizations.Organization, requested plans.PlanID, successURL, cancelURL string) (ChangeResult, error) {
	current := org.Subscription.Plan
	if requested == current {
		return ChangeResult{}, ErrAlreadyOnPlan
	}
	if !s.catalog.Purchasable(requested) {
		return ChangeResult{}, ErrInvalidPlan
	}

	if current == plans.Free {
		session, err := s.gateway.StartCheckout(ctx, org, requested, successURL, cancelURL)
		if err != nil {
			return ChangeResult{}, err
		}
		metrics.PlanChanges.WithLabelValues(ActionCheckout).Inc()
		return ChangeResult{Action: ActionCheckout, Checkout: &session, Subscription: org.Subscription}, nil
	}

	if _, err := s.gateway.CreateOrUpdateSubscription(ctx, org, requested); err != nil {
		return ChangeResult{}, err
	}
	metrics.PlanChanges.WithLabelValues(ActionUpdated).Inc()
	s.logger.Info("plan changed",
		zap.String("organization_id", org.ID),
		zap.String("from", string(current)),
		zap.String("to", string(org.Subscription.Plan)))
	return ChangeResult{Action: ActionUpdated, Subscription: org.Subscription}, nil
}

// Cancel schedules cancellation at period end, or cancels immediately.
func (s *Service) Cancel(ctx context.Context, org *organizations.Organization, atPeriodEnd bool) error {
	if !org.Subscription.HasStripeSubscription() {
		return ErrNoActiveSubscription
	}
	if atPeriodEnd {
		return s.gateway.SetCancelFlag(ctx, org, true)
	}
	return s.gateway.CancelNow(ctx, org)
}

func (s *Service) Reactivate(ctx context.Context, org *organizations.Organization) error {
	if !org.Subscription.HasStripeSubscription() {
		return ErrNoSubscription
	}
	return s.gateway.SetCancelFlag(ctx, org, false)
}

func (s *Service) OpenPortal(ctx context.Context, org *organizations.Organization, returnURL string) (string, error) {
	return s.gateway.OpenPortal(ctx, org, returnURL)
}

func (s *Service) ConfirmCheckout(ctx context.Context, org *organizations.Organization, sessionID string) error {
	return s.gateway.ConfirmCheckout(ctx, org, sessionID)
}

// Resync pulls the provider subscription and overwrites the snapshot.
func (s *Service) Resync(ctx context.Context, org *organizations.Organization) error {
	remote, err := s.gateway.FetchRemote(ctx, org)
	if err != nil {
		return err
	}
	if remote == nil {
		return ErrNoSubscription
	}
	return s.gateway.Sync(ctx, org, *remote)
}

// LinkSubscription attaches an existing provider subscription to the organization.
func (s *Service) LinkSubscription(ctx context.Context, org *organizations.Organization, subscriptionID string) error {
	remote, err := s.gateway.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	return s.gateway.Sync(ctx, org, remote)
}

func (s *Service) Payments(ctx context.Context, orgID string) ([]billing.Payment, error) {
	if s.payments == nil {
		return []billing.Payment{}, nil
	}
	return s.payments.ListPayments(ctx, orgID)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
