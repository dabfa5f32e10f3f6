package inventory

import "time"

// Hardware is a managed asset. It is the only record counted against the
// plan's asset limit.
type Hardware struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	OrganizationID string    `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	Name           string    `gorm:"not null" json:"name" bson:"name"`
	Type           string    `json:"type" bson:"type"`
	SerialNumber   string    `json:"serialNumber" bson:"serialNumber"`
	MACAddress     string    `json:"macAddress" bson:"macAddress"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (Hardware) TableName() string { return "hardware" }

type Software struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	OrganizationID string    `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	Name           string    `json:"name" bson:"name"`
	Version        string    `json:"version" bson:"version"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

func (Software) TableName() string { return "software" }

type Ticket struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	OrganizationID string    `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	Title          string    `json:"title" bson:"title"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

type Telemetry struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	OrganizationID string    `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	HardwareID     string    `gorm:"type:varchar(36);index" json:"hardwareId" bson:"hardware"`
	CollectedAt    time.Time `json:"collectedAt" bson:"collectedAt"`
}

func (Telemetry) TableName() string { return "telemetry" }

// Collection names the counted record kinds.
type Collection string

const (
	CollectionHardware  Collection = "hardware"
	CollectionSoftware  Collection = "software"
	CollectionUsers     Collection = "users"
	CollectionTickets   Collection = "tickets"
	CollectionTelemetry Collection = "telemetry"
)
