package repository

import (
	"errors"

	"go-services-marketplace/internal/domain/entity"
	domainRepo "go-services-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct{}

func NewReviewRepository() domainRepo.ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *entity.Review) error {
	return db.Create(review).Error
}

func (r *reviewRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	err := db.Where("booking_id = ?", bookingID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByServiceID(db *gorm.DB, serviceID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	err := db.Preload("Customer").
		Where("service_id = ?", serviceID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
