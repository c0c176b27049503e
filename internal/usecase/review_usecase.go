package usecase

import (
	"context"
	"errors"

	"go-services-marketplace/internal/converter"
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/delivery/http/middleware"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/domain/repository"
	"go-services-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotCompleted    = errors.New("only completed bookings can be reviewed")
	ErrBookingAlreadyReviewed = errors.New("booking has already been reviewed")
)

type ReviewUsecase interface {
	Create(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetByServiceID(ctx context.Context, serviceID uuid.UUID) (*dto.ReviewListResponse, error)
}

type reviewUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	reviewRepo   repository.ReviewRepository
	bookingRepo  repository.BookingRepository
	auditService service.AuditService
}

func NewReviewUsecase(db *gorm.DB, log *logrus.Logger, reviewRepo repository.ReviewRepository, bookingRepo repository.BookingRepository, auditService service.AuditService) ReviewUsecase {
	return &reviewUsecase{
		db:           db,
		log:          log,
		reviewRepo:   reviewRepo,
		bookingRepo:  bookingRepo,
		auditService: auditService,
	}
}

// Create records a review for a completed booking. One review per booking,
// written only by the booking's own customer.
func (u *reviewUsecase) Create(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	customerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), req.BookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", req.BookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.CustomerID != customerID {
		return nil, ErrBookingAccessDenied
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	existing, err := u.reviewRepo.FindByBookingID(u.db.WithContext(ctx), req.BookingID)
	if err != nil {
		u.log.Warnf("Failed to check existing review for booking %s: %+v", req.BookingID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrBookingAlreadyReviewed
	}

	review := &entity.Review{
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err := u.reviewRepo.Create(u.db.WithContext(ctx), review); err != nil {
		u.log.Warnf("Failed to create review for booking %s: %+v", req.BookingID, err)
		return nil, err
	}

	u.auditService.LogCreate(u.db.WithContext(ctx), &customerID, entity.AuditActionReviewCreate,
		"review", review.ID.String(), review.Rating)

	return converter.ReviewToResponse(review), nil
}

func (u *reviewUsecase) GetByServiceID(ctx context.Context, serviceID uuid.UUID) (*dto.ReviewListResponse, error) {
	reviews, err := u.reviewRepo.FindByServiceID(u.db.WithContext(ctx), serviceID)
	if err != nil {
		u.log.Warnf("Failed to list reviews for service %s: %+v", serviceID, err)
		return nil, err
	}

	return &dto.ReviewListResponse{
		Reviews: converter.ReviewsToResponses(reviews),
		Total:   len(reviews),
	}, nil
}
