package repository

import (
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *entity.Review) error
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.Review, error)
	FindByServiceID(db *gorm.DB, serviceID uuid.UUID) ([]entity.Review, error)
}
