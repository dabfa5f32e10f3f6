package users

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an organization member. Accounts are issued by the identity
// provider; this table only mirrors membership for counting and admin views.
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"_id"`
	OrganizationID string    `gorm:"type:varchar(36);index;not null" json:"organizationId" bson:"organization"`
	Email          string    `gorm:"not null;uniqueIndex:idx_users_email" json:"email" bson:"email"`
	Name           string    `json:"name" bson:"name"`
	Role           string    `gorm:"type:varchar(20);not null;default:'user'" json:"role" bson:"role"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}
