package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies notification records
type NotificationType string

const (
	NotificationTypeBookingRequest NotificationType = "booking_request"
	NotificationTypeBookingStatus  NotificationType = "booking_status"
)

// Notification is a flat append log entry for a provider. Delivery is out of
// scope: records are written best-effort and read back by the provider.
type Notification struct {
	ID         int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderID uuid.UUID        `gorm:"type:uuid;not null;index" json:"provider_id"`
	BookingID  *uuid.UUID       `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	Title      string           `gorm:"type:varchar(255);not null" json:"title"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	Type       NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	IsRead     bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt  time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
