package repository

import (
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Notification, error)

	// MarkRead returns the number of rows affected so callers can tell a
	// missing notification from a repeated read.
	MarkRead(db *gorm.DB, id int64, providerID uuid.UUID) (int64, error)
}
