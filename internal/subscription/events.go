package subscription

import "asset-manager-api/internal/domain/organizations"

const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// Event is a verified provider notification with its payload decoded
// according to Type. Subscription is set for customer.subscription.*,
// Invoice for invoice.*.
type Event struct {
	ID           string
	Type         string
	Subscription *organizations.ProviderSubscription
	Invoice      *Invoice
}

type Invoice struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	AmountPaid     int64
	AmountDue      int64
	Currency       string
	ReceiptURL     string
}

type Outcome string

const (
	OutcomeSynced        Outcome = "synced"
	OutcomeCancelled     Outcome = "cancelled"
	OutcomePaymentFailed Outcome = "payment_failed_logged"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeOrgNotFound   Outcome = "org_not_found"
)
