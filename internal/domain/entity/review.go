package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is customer feedback on a completed booking. At most one review may
// exist per booking; the unique index backs up the usecase-level check.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Customer User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
