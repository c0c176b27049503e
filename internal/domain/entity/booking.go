package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusRejected   BookingStatus = "rejected"
)

// ParseBookingStatus converts a string to a BookingStatus, returning an error if unknown
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("invalid booking status: %s", s)
}

// Booking represents a customer's request to receive a service from a provider
// at a specific time. The provider is captured at creation time from the
// service; reassigning a service later never changes existing bookings.
type Booking struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ServiceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_id"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	ProviderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"provider_id"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ScheduledDate   time.Time       `gorm:"type:date;not null" json:"scheduled_date"`
	ScheduledTime   string          `gorm:"type:time;not null" json:"scheduled_time"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(50);not null" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text;not null" json:"customer_address"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	EvidenceURL     *string         `gorm:"type:text" json:"evidence_url,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Service  Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Customer User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Provider User    `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal checks if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// IsDeletable checks if the booking may be hard-deleted. Active bookings are
// kept for audit history.
func (b *Booking) IsDeletable() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}

// HasEvidence checks if a completion-evidence artifact is attached
func (b *Booking) HasEvidence() bool {
	return b.EvidenceURL != nil && *b.EvidenceURL != ""
}

// ScheduledAt combines the scheduled date and time into a single UTC instant.
// An unparsable time is an error so callers never compare against a guessed
// instant.
func (b *Booking) ScheduledAt() (time.Time, error) {
	t, err := time.Parse("15:04", b.ScheduledTime)
	if err != nil {
		// postgres time columns come back as HH:MM:SS
		t, err = time.Parse("15:04:05", b.ScheduledTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid scheduled time %q: %w", b.ScheduledTime, err)
		}
	}
	d := b.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// ActorFor resolves which role the given user plays on this booking.
// Returns false if the user is neither the customer nor the provider.
func (b *Booking) ActorFor(userID uuid.UUID) (ActorRole, bool) {
	switch userID {
	case b.CustomerID:
		return ActorCustomer, true
	case b.ProviderID:
		return ActorProvider, true
	}
	return "", false
}
