package organizations

import (
	"time"

	"asset-manager-api/internal/domain/plans"

	"github.com/google/uuid"
)

type Settings struct {
	Timezone string `json:"timezone" bson:"timezone"`
	Currency string `json:"currency" bson:"currency"`
	Language string `json:"language" bson:"language"`
}

func DefaultSettings() Settings {
	return Settings{Timezone: "UTC", Currency: "USD", Language: "en"}
}

type Organization struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Name         string       `gorm:"not null" json:"name" bson:"name"`
	Domain       string       `gorm:"index" json:"domain" bson:"domain"`
	IsActive     bool         `gorm:"not null;default:true" json:"isActive" bson:"isActive"`
	Settings     Settings     `gorm:"embedded;embeddedPrefix:settings_" json:"settings" bson:"settings"`
	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription" bson:"subscription"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// New creates an active organization on the free plan. A positive trial
// bounds the free period with an end date.
func New(name, domain string, now time.Time, trial time.Duration, catalog *plans.Catalog) Organization {
	return Organization{
		ID:           uuid.NewString(),
		Name:         name,
		Domain:       domain,
		IsActive:     true,
		Settings:     DefaultSettings(),
		Subscription: NewSubscription(now, trial, catalog.Lookup(plans.Free)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
