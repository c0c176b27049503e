package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderProfile holds provider-specific data linked to a user
type ProviderProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BusinessName string    `gorm:"type:varchar(255);not null" json:"business_name"`
	Biography    string    `gorm:"type:text" json:"biography,omitempty"`
	PhoneNumber  string    `gorm:"type:varchar(50)" json:"phone_number,omitempty"`
	Address      string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProviderProfile) TableName() string {
	return "provider_profiles"
}

// CustomerProfile holds customer-specific data linked to a user
type CustomerProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phone_number,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}
