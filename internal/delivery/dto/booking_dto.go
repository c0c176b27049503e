package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	ServiceID       uuid.UUID `json:"service_id" validate:"required"`
	CustomerName    string    `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string    `json:"customer_email" validate:"required,email"`
	CustomerPhone   string    `json:"customer_phone" validate:"required,max=50"`
	CustomerAddress string    `json:"customer_address" validate:"required"`
	ScheduledDate   string    `json:"scheduled_date" validate:"required,dateonly"`
	ScheduledTime   string    `json:"scheduled_time" validate:"required,timehhmm"`
	Notes           string    `json:"notes" validate:"max=1000"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// Response DTOs

type BookingResponse struct {
	ID              uuid.UUID        `json:"id"`
	ServiceID       uuid.UUID        `json:"service_id"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	ProviderID      uuid.UUID        `json:"provider_id"`
	Status          string           `json:"status"`
	ScheduledDate   string           `json:"scheduled_date"`
	ScheduledTime   string           `json:"scheduled_time"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address"`
	Notes           string           `json:"notes,omitempty"`
	EvidenceURL     string           `json:"evidence_url,omitempty"`
	Service         *ServiceResponse `json:"service,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
