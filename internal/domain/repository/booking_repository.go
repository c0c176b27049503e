package repository

import (
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByCustomerID(db *gorm.DB, customerID uuid.UUID) ([]entity.Booking, error)
	FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Booking, error)

	// UpdateStatusIfCurrent applies updates only when the row still holds the
	// expected status (optimistic check-and-set). Returns the number of rows
	// affected: 1 = applied, 0 = lost the race.
	UpdateStatusIfCurrent(db *gorm.DB, id uuid.UUID, current entity.BookingStatus, updates map[string]interface{}) (int64, error)

	Delete(db *gorm.DB, id uuid.UUID) error
}
