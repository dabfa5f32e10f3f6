package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/infra/metrics"
	"asset-manager-api/internal/subscription"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
)

type Config struct {
	SecretKey string
	// APIURL overrides the Stripe API base URL (stripe-mock, tests).
	APIURL            string
	MaxNetworkRetries int64
	AppEnv            string
	Logger            *zap.Logger
}

// Provider implements subscription.Provider on the Stripe API.
type Provider struct {
	api    *client.API
	appEnv string
	logger *zap.Logger
}

var _ subscription.Provider = (*Provider)(nil)

func New(cfg Config) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     logger.Sugar(),
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}

	return &Provider{
		api:    client.New(cfg.SecretKey, backends),
		appEnv: cfg.AppEnv,
		logger: logger,
	}
}

func (p *Provider) CreateCustomer(ctx context.Context, org organizations.Organization) (string, error) {
	params := &stripe.CustomerParams{
		Name: stripe.String(org.Name),
		Metadata: map[string]string{
			"organizationId": org.ID,
			"app_env":        p.appEnv,
		},
	}
	if org.Domain != "" {
		params.Description = stripe.String(org.Domain)
	}
	params.Context = ctx
	params.SetIdempotencyKey("customer-" + org.ID)

	cus, err := p.api.Customers.New(params)
	if err := p.result("customers.create", err); err != nil {
		return "", err
	}
	return cus.ID, nil
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (subscription.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(req.OrganizationID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"organizationId": req.OrganizationID,
				"planName":       string(req.Plan),
			},
		},
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err := p.result("checkout.sessions.create", err); err != nil {
		return subscription.CheckoutSession{}, err
	}
	return toCheckoutSession(s), nil
}

func (p *Provider) GetCheckoutSession(ctx context.Context, sessionID string) (subscription.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err := p.result("checkout.sessions.get", err); err != nil {
		return subscription.CheckoutSession{}, err
	}
	return toCheckoutSession(s), nil
}

func (p *Provider) CreateSubscription(ctx context.Context, customerID, priceID string) (organizations.ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	params.SetIdempotencyKey("subscription-" + customerID + "-" + priceID)
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := p.api.Subscriptions.New(params)
	if err := p.result("subscriptions.create", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return ToProviderSubscription(sub), nil
}

// UpdateSubscriptionPrice swaps the price on the subscription's first item,
// prorating the difference.
func (p *Provider) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (organizations.ProviderSubscription, error) {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx
	current, err := p.api.Subscriptions.Get(subscriptionID, getParams)
	if err := p.result("subscriptions.get", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return organizations.ProviderSubscription{}, fmt.Errorf("%w: subscription %s has no items", subscription.ErrProviderUnavailable, subscriptionID)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx

	updated, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err := p.result("subscriptions.update", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return ToProviderSubscription(updated), nil
}

func (p *Provider) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (organizations.ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(cancel)}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err := p.result("subscriptions.update", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return ToProviderSubscription(sub), nil
}

func (p *Provider) CancelSubscription(ctx context.Context, subscriptionID string) (organizations.ProviderSubscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Cancel(subscriptionID, params)
	if err := p.result("subscriptions.cancel", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return ToProviderSubscription(sub), nil
}

func (p *Provider) GetSubscription(ctx context.Context, subscriptionID string) (organizations.ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err := p.result("subscriptions.get", err); err != nil {
		return organizations.ProviderSubscription{}, err
	}
	return ToProviderSubscription(sub), nil
}

func (p *Provider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err := p.result("billing_portal.sessions.create", err); err != nil {
		return "", err
	}
	return s.URL, nil
}

// ListPrices returns every recurring price on the account, active or not.
func (p *Provider) ListPrices(ctx context.Context) ([]subscription.Price, error) {
	params := &stripe.PriceListParams{Type: stripe.String(string(stripe.PriceTypeRecurring))}
	params.Context = ctx

	var out []subscription.Price
	it := p.api.Prices.List(params)
	for it.Next() {
		out = append(out, toPrice(it.Price()))
	}
	if err := p.result("prices.list", it.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

// result records the call and wraps failures with ErrProviderUnavailable.
func (p *Provider) result(op string, err error) error {
	if err == nil {
		metrics.ProviderCalls.WithLabelValues(op, "ok").Inc()
		return nil
	}
	metrics.ProviderCalls.WithLabelValues(op, "error").Inc()

	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		fields = append(fields,
			zap.String("stripe_code", string(stripeErr.Code)),
			zap.Int("http_status", stripeErr.HTTPStatusCode),
			zap.String("request_id", stripeErr.RequestID))
	}
	p.logger.Warn("stripe call failed", fields...)
	return fmt.Errorf("%w: %s: %w", subscription.ErrProviderUnavailable, op, err)
}

// ToProviderSubscription converts a Stripe subscription to the local view.
func ToProviderSubscription(s *stripe.Subscription) organizations.ProviderSubscription {
	out := organizations.ProviderSubscription{
		ID:                s.ID,
		Status:            NormalizeStatus(string(s.Status)),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		out.PriceID = s.Items.Data[0].Price.ID
	}
	if s.CurrentPeriodStart > 0 {
		out.CurrentPeriodStart = time.Unix(s.CurrentPeriodStart, 0).UTC()
	}
	if s.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(s.CurrentPeriodEnd, 0).UTC()
	}
	return out
}

func toCheckoutSession(s *stripe.CheckoutSession) subscription.CheckoutSession {
	out := subscription.CheckoutSession{
		ID:       s.ID,
		URL:      s.URL,
		Complete: s.Status == stripe.CheckoutSessionStatusComplete,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	return out
}

func toPrice(pr *stripe.Price) subscription.Price {
	out := subscription.Price{
		ID:         pr.ID,
		Active:     pr.Active,
		Currency:   string(pr.Currency),
		UnitAmount: pr.UnitAmount,
	}
	if pr.Recurring != nil {
		out.Interval = string(pr.Recurring.Interval)
	}
	if pr.Product != nil {
		out.ProductID = pr.Product.ID
	}
	return out
}
