package usecase

import (
	"context"
	"errors"

	"go-services-marketplace/internal/converter"
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/delivery/http/middleware"
	"go-services-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationUsecase interface {
	GetMine(ctx context.Context) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, notificationID int64) error
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) GetMine(ctx context.Context) (*dto.NotificationListResponse, error) {
	providerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	notifications, err := u.notificationRepo.FindByProviderID(u.db.WithContext(ctx), providerID)
	if err != nil {
		u.log.Warnf("Failed to list notifications for provider %s: %+v", providerID, err)
		return nil, err
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Total:         len(notifications),
	}, nil
}

// MarkRead flips a notification to read. The update is scoped to the caller's
// own notifications, so a miss means not found or not yours.
func (u *notificationUsecase) MarkRead(ctx context.Context, notificationID int64) error {
	providerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	rows, err := u.notificationRepo.MarkRead(u.db.WithContext(ctx), notificationID, providerID)
	if err != nil {
		u.log.Warnf("Failed to mark notification %d read: %+v", notificationID, err)
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
