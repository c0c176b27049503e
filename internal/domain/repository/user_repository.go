package repository

import (
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
}

type ProviderProfileRepository interface {
	Create(db *gorm.DB, profile *entity.ProviderProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.ProviderProfile, error)
}

type CustomerProfileRepository interface {
	Create(db *gorm.DB, profile *entity.CustomerProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.CustomerProfile, error)
}
