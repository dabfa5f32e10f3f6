package billing

import (
	"time"

	"asset-manager-api/internal/domain/plans"
)

// Payment is one Stripe invoice outcome for an organization.
type Payment struct {
	ID                   uint         `gorm:"primaryKey" json:"id" bson:"-"`
	OrganizationID       string       `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	StripeInvoiceID      string       `gorm:"uniqueIndex;not null" json:"invoiceId" bson:"_id"`
	StripeSubscriptionID string       `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	Plan                 plans.PlanID `gorm:"type:varchar(32)" json:"plan" bson:"plan"`
	AmountCents          int64        `json:"amountCents" bson:"amountCents"`
	Currency             string       `gorm:"type:varchar(8)" json:"currency" bson:"currency"`
	Status               string       `gorm:"type:varchar(16)" json:"status" bson:"status"`
	ReceiptURL           string       `json:"receiptUrl,omitempty" bson:"receiptUrl,omitempty"`
	CreatedAt            time.Time    `json:"createdAt" bson:"createdAt"`
}

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)
