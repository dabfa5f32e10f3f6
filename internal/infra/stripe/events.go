package stripe

import (
	"encoding/json"
	"fmt"

	"asset-manager-api/internal/subscription"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

// VerifyEvent checks the Stripe-Signature header against secret and decodes
// the payload object for the event types the reconciler understands.
func VerifyEvent(payload []byte, signature, secret string) (subscription.Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return subscription.Event{}, fmt.Errorf("%w: %w", subscription.ErrSignatureInvalid, err)
	}
	return DecodeEvent(ev)
}

func DecodeEvent(ev stripe.Event) (subscription.Event, error) {
	out := subscription.Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case subscription.EventSubscriptionCreated,
		subscription.EventSubscriptionUpdated,
		subscription.EventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return out, fmt.Errorf("%w: %s: %w", subscription.ErrMalformedEvent, out.Type, err)
		}
		sub := ToProviderSubscription(&s)
		out.Subscription = &sub

	case subscription.EventInvoicePaymentSucceeded,
		subscription.EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return out, fmt.Errorf("%w: %s: %w", subscription.ErrMalformedEvent, out.Type, err)
		}
		out.Invoice = toInvoice(&inv)
	}
	return out, nil
}

func toInvoice(inv *stripe.Invoice) *subscription.Invoice {
	out := &subscription.Invoice{
		ID:         inv.ID,
		AmountPaid: inv.AmountPaid,
		AmountDue:  inv.AmountDue,
		Currency:   string(inv.Currency),
		ReceiptURL: inv.HostedInvoiceURL,
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	return out
}
