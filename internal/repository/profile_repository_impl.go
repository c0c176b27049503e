package repository

import (
	"errors"

	"go-services-marketplace/internal/domain/entity"
	domainRepo "go-services-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type providerProfileRepository struct{}

func NewProviderProfileRepository() domainRepo.ProviderProfileRepository {
	return &providerProfileRepository{}
}

func (r *providerProfileRepository) Create(db *gorm.DB, profile *entity.ProviderProfile) error {
	return db.Create(profile).Error
}

func (r *providerProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.ProviderProfile, error) {
	var profile entity.ProviderProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

type customerProfileRepository struct{}

func NewCustomerProfileRepository() domainRepo.CustomerProfileRepository {
	return &customerProfileRepository{}
}

func (r *customerProfileRepository) Create(db *gorm.DB, profile *entity.CustomerProfile) error {
	return db.Create(profile).Error
}

func (r *customerProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.CustomerProfile, error) {
	var profile entity.CustomerProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
