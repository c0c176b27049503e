package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateServiceRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Address     string          `json:"address" validate:"max=500"`
}

type UpdateServiceRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Address     string          `json:"address" validate:"max=500"`
	IsActive    *bool           `json:"is_active"`
}

// Response DTOs

type ServiceResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProviderID   uuid.UUID       `json:"provider_id"`
	ProviderName string          `json:"provider_name,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Address      string          `json:"address,omitempty"`
	IsActive     *bool           `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int64             `json:"total"`
}
