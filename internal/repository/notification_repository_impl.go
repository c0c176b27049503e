package repository

import (
	"go-services-marketplace/internal/domain/entity"
	domainRepo "go-services-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := db.Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(db *gorm.DB, id int64, providerID uuid.UUID) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("id = ? AND provider_id = ?", id, providerID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
