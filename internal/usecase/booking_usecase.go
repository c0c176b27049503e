package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go-services-marketplace/internal/converter"
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/delivery/http/middleware"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/domain/repository"
	"go-services-marketplace/internal/infrastructure/storage"
	"go-services-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrBookingAccessDenied  = errors.New("booking does not belong to you")
	ErrBookingConflict      = errors.New("booking was changed by a concurrent request")
	ErrBookingNotDeletable  = errors.New("only pending, cancelled or rejected bookings can be deleted")
	ErrBookingNotInProgress = errors.New("booking is not in progress")
	ErrInvalidStatusValue   = errors.New("unknown booking status")
	ErrInvalidScheduleDate  = errors.New("invalid schedule date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat    = errors.New("invalid time format, use HH:MM")
)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	GetProviderBookings(ctx context.Context) (*dto.BookingListResponse, error)
	Transition(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, evidence io.Reader, contentType string, size int64) (*dto.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
}

type bookingUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	bookingRepo      repository.BookingRepository
	serviceRepo      repository.ServiceRepository
	notificationRepo repository.NotificationRepository
	auditService     service.AuditService
	evidenceStore    storage.EvidenceStorage
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	serviceRepo repository.ServiceRepository,
	notificationRepo repository.NotificationRepository,
	auditService service.AuditService,
	evidenceStore storage.EvidenceStorage,
) BookingUsecase {
	return &bookingUsecase{
		db:               db,
		log:              log,
		bookingRepo:      bookingRepo,
		serviceRepo:      serviceRepo,
		notificationRepo: notificationRepo,
		auditService:     auditService,
		evidenceStore:    evidenceStore,
	}
}

// CreateBooking books a service for the logged-in customer.
//
// The charge amount and the provider are captured from the service at this
// moment: later price changes or service reassignments never touch existing
// bookings. The insert is a single statement; the provider notification runs
// after it and is best-effort.
func (u *bookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	customerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), req.ServiceID)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", req.ServiceID, err)
		return nil, err
	}
	if svc == nil || (svc.IsActive != nil && !*svc.IsActive) {
		return nil, ErrServiceNotFound
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}
	if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
		return nil, ErrInvalidTimeFormat
	}

	booking := &entity.Booking{
		ServiceID:       svc.ID,
		CustomerID:      customerID,
		ProviderID:      svc.ProviderID,
		Status:          entity.BookingStatusPending,
		ScheduledDate:   scheduledDate,
		ScheduledTime:   req.ScheduledTime,
		TotalAmount:     svc.Price,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
	}

	if err := u.bookingRepo.Create(u.db.WithContext(ctx), booking); err != nil {
		u.log.Errorf("Failed to create booking for service %s: %+v", svc.ID, err)
		return nil, err
	}

	u.notifyProvider(ctx, booking, "New booking request",
		fmt.Sprintf("%s requested %q on %s at %s", req.CustomerName, svc.Title, req.ScheduledDate, req.ScheduledTime),
		entity.NotificationTypeBookingRequest)
	u.auditService.LogCreate(u.db.WithContext(ctx), &customerID, entity.AuditActionBookingCreate,
		"booking", booking.ID.String(), string(booking.Status))

	u.log.Infof("Booking created: id=%s, service=%s, amount=%s", booking.ID, svc.ID, booking.TotalAmount)

	full, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), booking.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return converter.BookingToResponse(booking), nil
	}
	return converter.BookingToResponse(full), nil
}

// GetBooking returns a single booking. Only the booking's customer, its
// provider or an admin may see it.
func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	booking, err := u.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if _, party := booking.ActorFor(userID); !party && !isAdmin(ctx) {
		return nil, ErrBookingAccessDenied
	}

	return converter.BookingToResponse(booking), nil
}

// GetMyBookings returns all bookings made by the logged-in customer
func (u *bookingUsecase) GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	bookings, err := u.bookingRepo.FindByCustomerID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for customer %s: %+v", userID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// GetProviderBookings returns all bookings addressed to the logged-in provider
func (u *bookingUsecase) GetProviderBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	bookings, err := u.bookingRepo.FindByProviderID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for provider %s: %+v", userID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// Transition requests a status change on a booking.
//
// Flow:
// 1. Load the booking and resolve the caller's role relative to it
// 2. Ask the transition policy for a verdict (pure, no state change)
// 3. Apply with a conditional update keyed on the previously-read status;
//    zero affected rows means a concurrent request won the race
// 4. After the commit: best-effort notification and audit entry
func (u *bookingUsecase) Transition(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	requested, err := entity.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, ErrInvalidStatusValue
	}

	booking, err := u.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	actor, party := booking.ActorFor(userID)
	if !party {
		return nil, ErrBookingAccessDenied
	}

	return u.applyTransition(ctx, userID, booking, actor, requested, "", req.Notes)
}

// CompleteBooking is the evidence-gated IN_PROGRESS -> COMPLETED transition.
// The artifact is stored first and the status change runs only with a stable
// reference in hand; if storage fails the booking is untouched. The cheap
// state check runs before the upload to avoid wasted writes.
func (u *bookingUsecase) CompleteBooking(ctx context.Context, bookingID uuid.UUID, evidence io.Reader, contentType string, size int64) (*dto.BookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	booking, err := u.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	actor, party := booking.ActorFor(userID)
	if !party || actor != entity.ActorProvider {
		return nil, ErrBookingAccessDenied
	}

	if booking.Status != entity.BookingStatusInProgress {
		return nil, ErrBookingNotInProgress
	}

	evidenceURL, err := u.evidenceStore.Store(ctx, evidence, contentType, size)
	if err != nil {
		u.log.Warnf("Failed to store completion evidence for booking %s: %+v", bookingID, err)
		return nil, err
	}

	return u.applyTransition(ctx, userID, booking, actor, entity.BookingStatusCompleted, evidenceURL, "")
}

// DeleteBooking removes a booking that never got off the ground. Active and
// completed bookings are kept for audit history.
func (u *bookingUsecase) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	booking, err := u.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if _, party := booking.ActorFor(userID); !party && !isAdmin(ctx) {
		return ErrBookingAccessDenied
	}

	if !booking.IsDeletable() {
		return ErrBookingNotDeletable
	}

	if err := u.bookingRepo.Delete(u.db.WithContext(ctx), bookingID); err != nil {
		u.log.Warnf("Failed to delete booking %s: %+v", bookingID, err)
		return err
	}

	u.auditService.LogDelete(u.db.WithContext(ctx), &userID, entity.AuditActionBookingDelete,
		"booking", bookingID.String(), string(booking.Status))

	u.log.Infof("Booking deleted: id=%s, status=%s", bookingID, booking.Status)
	return nil
}

func (u *bookingUsecase) loadBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (u *bookingUsecase) applyTransition(ctx context.Context, userID uuid.UUID, booking *entity.Booking, actor entity.ActorRole, requested entity.BookingStatus, evidenceURL, notes string) (*dto.BookingResponse, error) {
	scheduledAt, err := booking.ScheduledAt()
	if err != nil {
		u.log.Warnf("Booking %s has unparsable scheduled time: %+v", booking.ID, err)
		return nil, ErrInvalidTimeFormat
	}

	if err := entity.DecideTransition(booking.Status, requested, actor,
		time.Now().UTC(), scheduledAt, evidenceURL != ""); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": requested}
	if evidenceURL != "" {
		updates["evidence_url"] = evidenceURL
	}
	// a customer cancelling may leave a note; other transitions keep notes as-is
	if notes != "" && actor == entity.ActorCustomer && requested == entity.BookingStatusCancelled {
		updates["notes"] = notes
	}

	rows, err := u.bookingRepo.UpdateStatusIfCurrent(u.db.WithContext(ctx), booking.ID, booking.Status, updates)
	if err != nil {
		u.log.Warnf("Failed to update booking %s status: %+v", booking.ID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrBookingConflict
	}

	// Status is committed; everything below is best-effort and never
	// reverses or fails the transition.
	u.notifyProvider(ctx, booking, transitionTitle(requested),
		fmt.Sprintf("Booking %s is now %s", booking.ID, requested),
		entity.NotificationTypeBookingStatus)
	u.auditService.LogUpdate(u.db.WithContext(ctx), &userID, entity.AuditActionBookingTransition,
		"booking", booking.ID.String(), string(booking.Status), string(requested))

	u.log.Infof("Booking transition: id=%s, %s -> %s, actor=%s", booking.ID, booking.Status, requested, actor)

	updated, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), booking.ID)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		booking.Status = requested
		return converter.BookingToResponse(booking), nil
	}
	return converter.BookingToResponse(updated), nil
}

func (u *bookingUsecase) notifyProvider(ctx context.Context, booking *entity.Booking, title, message string, notificationType entity.NotificationType) {
	bookingID := booking.ID
	notification := &entity.Notification{
		ProviderID: booking.ProviderID,
		BookingID:  &bookingID,
		Title:      title,
		Message:    message,
		Type:       notificationType,
	}

	if err := u.notificationRepo.Create(u.db.WithContext(ctx), notification); err != nil {
		u.log.Warnf("Failed to enqueue notification for booking %s (non-fatal): %+v", booking.ID, err)
	}
}

func transitionTitle(status entity.BookingStatus) string {
	switch status {
	case entity.BookingStatusConfirmed:
		return "Booking confirmed"
	case entity.BookingStatusInProgress:
		return "Booking started"
	case entity.BookingStatusCompleted:
		return "Booking completed"
	case entity.BookingStatusCancelled:
		return "Booking cancelled"
	case entity.BookingStatusRejected:
		return "Booking rejected"
	}
	return "Booking updated"
}

func isAdmin(ctx context.Context) bool {
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	return ok && roleID == entity.RoleIDAdmin
}
