package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/delivery/http/middleware"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeBookingRepo keeps bookings in memory and mirrors the conditional
// update semantics of the real repository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*entity.Booking{}}
}

func (r *fakeBookingRepo) Create(_ *gorm.DB, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = entity.BookingStatusPending
	}
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByCustomerID(_ *gorm.DB, customerID uuid.UUID) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByProviderID(_ *gorm.DB, providerID uuid.UUID) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatusIfCurrent(_ *gorm.DB, id uuid.UUID, current entity.BookingStatus, updates map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != current {
		return 0, nil
	}
	if status, ok := updates["status"].(entity.BookingStatus); ok {
		booking.Status = status
	}
	if url, ok := updates["evidence_url"].(string); ok {
		booking.EvidenceURL = &url
	}
	if notes, ok := updates["notes"].(string); ok {
		booking.Notes = notes
	}
	return 1, nil
}

func (r *fakeBookingRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*entity.Service
}

func (r *fakeServiceRepo) Create(_ *gorm.DB, svc *entity.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	r.services[svc.ID] = svc
	return nil
}

func (r *fakeServiceRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	return svc, nil
}

func (r *fakeServiceRepo) FindAll(_ *gorm.DB, limit, offset int) ([]entity.Service, int64, error) {
	return nil, 0, nil
}

func (r *fakeServiceRepo) FindByProviderID(_ *gorm.DB, providerID uuid.UUID) ([]entity.Service, error) {
	return nil, nil
}

func (r *fakeServiceRepo) Update(_ *gorm.DB, svc *entity.Service) error { return nil }
func (r *fakeServiceRepo) Delete(_ *gorm.DB, id uuid.UUID) error       { return nil }

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []entity.Notification
}

func (r *fakeNotificationRepo) Create(_ *gorm.DB, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) FindByProviderID(_ *gorm.DB, providerID uuid.UUID) ([]entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Notification
	for _, n := range r.created {
		if n.ProviderID == providerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ *gorm.DB, id int64, providerID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) LogCreate(_ *gorm.DB, _ *uuid.UUID, action, _, _ string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogUpdate(_ *gorm.DB, _ *uuid.UUID, action, _, _ string, _, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogDelete(_ *gorm.DB, _ *uuid.UUID, action, _, _ string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

type fakeEvidenceStore struct {
	url   string
	err   error
	calls int
}

func (s *fakeEvidenceStore) Store(_ context.Context, _ io.Reader, _ string, _ int64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type bookingFixture struct {
	uc            usecase.BookingUsecase
	bookingRepo   *fakeBookingRepo
	serviceRepo   *fakeServiceRepo
	notifications *fakeNotificationRepo
	audit         *fakeAuditService
	evidence      *fakeEvidenceStore

	service    *entity.Service
	customerID uuid.UUID
	providerID uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	customerID := uuid.New()
	providerID := uuid.New()
	service := &entity.Service{
		ID:         uuid.New(),
		ProviderID: providerID,
		Title:      "Deep home cleaning",
		Category:   "cleaning",
		Price:      decimal.RequireFromString("80.00"),
	}

	f := &bookingFixture{
		bookingRepo:   newFakeBookingRepo(),
		serviceRepo:   &fakeServiceRepo{services: map[uuid.UUID]*entity.Service{service.ID: service}},
		notifications: &fakeNotificationRepo{},
		audit:         &fakeAuditService{},
		evidence:      &fakeEvidenceStore{url: "https://cdn.example.com/evidence/ok.jpg"},
		service:       service,
		customerID:    customerID,
		providerID:    providerID,
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db}
	f.uc = usecase.NewBookingUsecase(db, log, f.bookingRepo, f.serviceRepo, f.notifications, f.audit, f.evidence)
	return f
}

func ctxForUser(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

func (f *bookingFixture) seedBooking(status entity.BookingStatus, scheduledAt time.Time) *entity.Booking {
	booking := &entity.Booking{
		ID:            uuid.New(),
		ServiceID:     f.service.ID,
		CustomerID:    f.customerID,
		ProviderID:    f.providerID,
		Status:        status,
		ScheduledDate: time.Date(scheduledAt.Year(), scheduledAt.Month(), scheduledAt.Day(), 0, 0, 0, 0, time.UTC),
		ScheduledTime: scheduledAt.Format("15:04"),
		TotalAmount:   f.service.Price,
		CustomerName:  "Jamie Doe",
	}
	f.bookingRepo.Create(nil, booking)
	return booking
}

func TestCreateBookingCapturesPriceAndProvider(t *testing.T) {
	f := newBookingFixture(t)
	ctx := ctxForUser(f.customerID, entity.RoleIDCustomer)

	resp, err := f.uc.CreateBooking(ctx, &dto.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Jamie Doe",
		CustomerEmail: "jamie@example.com",
		CustomerPhone: "555-0100",
		ScheduledDate: "2026-04-01",
		ScheduledTime: "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.BookingStatusPending), resp.Status)
	assert.Equal(t, f.providerID, resp.ProviderID)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("80.00")))

	// Changing the catalog price later must not touch the stored booking
	f.service.Price = decimal.RequireFromString("120.00")
	stored, err := f.bookingRepo.FindByID(nil, resp.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("80.00")))

	// Provider gets a booking request notification
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, f.providerID, f.notifications.created[0].ProviderID)
	assert.Equal(t, entity.NotificationTypeBookingRequest, f.notifications.created[0].Type)

	assert.Contains(t, f.audit.actions, entity.AuditActionBookingCreate)
}

func TestCreateBookingUnknownService(t *testing.T) {
	f := newBookingFixture(t)
	ctx := ctxForUser(f.customerID, entity.RoleIDCustomer)

	_, err := f.uc.CreateBooking(ctx, &dto.CreateBookingRequest{
		ServiceID:     uuid.New(),
		CustomerName:  "Jamie Doe",
		ScheduledDate: "2026-04-01",
		ScheduledTime: "10:00",
	})
	assert.ErrorIs(t, err, usecase.ErrServiceNotFound)
	assert.Empty(t, f.bookingRepo.bookings)
	assert.Empty(t, f.notifications.created)
}

func TestCreateBookingInvalidSchedule(t *testing.T) {
	f := newBookingFixture(t)
	ctx := ctxForUser(f.customerID, entity.RoleIDCustomer)

	_, err := f.uc.CreateBooking(ctx, &dto.CreateBookingRequest{
		ServiceID:     f.service.ID,
		ScheduledDate: "01-04-2026",
		ScheduledTime: "10:00",
	})
	assert.ErrorIs(t, err, usecase.ErrInvalidScheduleDate)

	_, err = f.uc.CreateBooking(ctx, &dto.CreateBookingRequest{
		ServiceID:     f.service.ID,
		ScheduledDate: "2026-04-01",
		ScheduledTime: "10am",
	})
	assert.ErrorIs(t, err, usecase.ErrInvalidTimeFormat)
}

func TestGetBookingAccessControl(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	// Both parties can see it
	_, err := f.uc.GetBooking(ctxForUser(f.customerID, entity.RoleIDCustomer), booking.ID)
	assert.NoError(t, err)
	_, err = f.uc.GetBooking(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID)
	assert.NoError(t, err)

	// A stranger cannot
	_, err = f.uc.GetBooking(ctxForUser(uuid.New(), entity.RoleIDCustomer), booking.ID)
	assert.ErrorIs(t, err, usecase.ErrBookingAccessDenied)

	// An admin can
	_, err = f.uc.GetBooking(ctxForUser(uuid.New(), entity.RoleIDAdmin), booking.ID)
	assert.NoError(t, err)

	_, err = f.uc.GetBooking(ctxForUser(f.customerID, entity.RoleIDCustomer), uuid.New())
	assert.ErrorIs(t, err, usecase.ErrBookingNotFound)
}

func TestTransitionProviderConfirms(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	resp, err := f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), resp.Status)

	assert.Contains(t, f.audit.actions, entity.AuditActionBookingTransition)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, entity.NotificationTypeBookingStatus, f.notifications.created[0].Type)
}

func TestTransitionCustomerCannotConfirm(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	_, err := f.uc.Transition(ctxForUser(f.customerID, entity.RoleIDCustomer), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, entity.ErrActorNotAllowed)

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)
	assert.Equal(t, entity.BookingStatusPending, stored.Status)
}

func TestTransitionStrangerDenied(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	_, err := f.uc.Transition(ctxForUser(uuid.New(), entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, usecase.ErrBookingAccessDenied)
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	_, err := f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, usecase.ErrInvalidStatusValue)
}

func TestTransitionTerminalStatusIsFinal(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusRejected, time.Now().UTC().Add(24*time.Hour))

	_, err := f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	// Repeating the terminal status itself is also rejected, not silently accepted
	_, err = f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "rejected"})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestTransitionTimeGate(t *testing.T) {
	f := newBookingFixture(t)
	ctx := ctxForUser(f.providerID, entity.RoleIDProvider)

	// Scheduled for tomorrow: starting now is too early
	early := f.seedBooking(entity.BookingStatusConfirmed, time.Now().UTC().Add(24*time.Hour))
	_, err := f.uc.Transition(ctx, early.ID, &dto.UpdateBookingStatusRequest{Status: "in_progress"})
	assert.ErrorIs(t, err, entity.ErrTransitionTooEarly)

	// Scheduled an hour ago: starting is allowed
	due := f.seedBooking(entity.BookingStatusConfirmed, time.Now().UTC().Add(-time.Hour))
	resp, err := f.uc.Transition(ctx, due.ID, &dto.UpdateBookingStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusInProgress), resp.Status)
}

func TestTransitionRejectsCorruptScheduledTime(t *testing.T) {
	f := newBookingFixture(t)
	ctx := ctxForUser(f.providerID, entity.RoleIDProvider)

	// An unparsable time must never pass the schedule gate as midnight
	booking := f.seedBooking(entity.BookingStatusConfirmed, time.Now().UTC().Add(-time.Hour))
	booking.ScheduledTime = "noon"
	f.bookingRepo.Create(nil, booking)

	_, err := f.uc.Transition(ctx, booking.ID, &dto.UpdateBookingStatusRequest{Status: "in_progress"})
	assert.ErrorIs(t, err, usecase.ErrInvalidTimeFormat)

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)
	assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
}

func TestTransitionCompletedNeedsEvidence(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusInProgress, time.Now().UTC().Add(-time.Hour))

	// The plain status endpoint carries no evidence, so completion is refused
	_, err := f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, entity.ErrEvidenceRequired)
}

func TestTransitionCustomerCancelKeepsNote(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusConfirmed, time.Now().UTC().Add(24*time.Hour))

	_, err := f.uc.Transition(ctxForUser(f.customerID, entity.RoleIDCustomer), booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "cancelled", Notes: "found another provider"})
	require.NoError(t, err)

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)
	assert.Equal(t, entity.BookingStatusCancelled, stored.Status)
	assert.Equal(t, "found another provider", stored.Notes)
}

func TestCompleteBookingHappyPath(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusInProgress, time.Now().UTC().Add(-time.Hour))

	resp, err := f.uc.CompleteBooking(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		strings.NewReader("jpeg-bytes"), "image/jpeg", 9)
	require.NoError(t, err)

	assert.Equal(t, string(entity.BookingStatusCompleted), resp.Status)
	assert.Equal(t, f.evidence.url, resp.EvidenceURL)
	assert.Equal(t, 1, f.evidence.calls)

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)
	assert.True(t, stored.HasEvidence())
}

func TestCompleteBookingWrongState(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(-time.Hour))

	_, err := f.uc.CompleteBooking(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		strings.NewReader("jpeg-bytes"), "image/jpeg", 9)
	assert.ErrorIs(t, err, usecase.ErrBookingNotInProgress)

	// No upload happens when the state check fails
	assert.Equal(t, 0, f.evidence.calls)
}

func TestCompleteBookingCustomerDenied(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusInProgress, time.Now().UTC().Add(-time.Hour))

	_, err := f.uc.CompleteBooking(ctxForUser(f.customerID, entity.RoleIDCustomer), booking.ID,
		strings.NewReader("jpeg-bytes"), "image/jpeg", 9)
	assert.ErrorIs(t, err, usecase.ErrBookingAccessDenied)
	assert.Equal(t, 0, f.evidence.calls)
}

func TestCompleteBookingStorageFailureLeavesStatus(t *testing.T) {
	f := newBookingFixture(t)
	f.evidence.err = errors.New("upstream unavailable")
	booking := f.seedBooking(entity.BookingStatusInProgress, time.Now().UTC().Add(-time.Hour))

	_, err := f.uc.CompleteBooking(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
		strings.NewReader("jpeg-bytes"), "image/jpeg", 9)
	assert.Error(t, err)

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)
	assert.Equal(t, entity.BookingStatusInProgress, stored.Status)
	assert.False(t, stored.HasEvidence())
}

func TestDeleteBookingGuard(t *testing.T) {
	f := newBookingFixture(t)

	deletable := f.seedBooking(entity.BookingStatusCancelled, time.Now().UTC())
	err := f.uc.DeleteBooking(ctxForUser(f.customerID, entity.RoleIDCustomer), deletable.ID)
	assert.NoError(t, err)
	assert.Contains(t, f.audit.actions, entity.AuditActionBookingDelete)

	active := f.seedBooking(entity.BookingStatusConfirmed, time.Now().UTC())
	err = f.uc.DeleteBooking(ctxForUser(f.customerID, entity.RoleIDCustomer), active.ID)
	assert.ErrorIs(t, err, usecase.ErrBookingNotDeletable)

	completed := f.seedBooking(entity.BookingStatusCompleted, time.Now().UTC())
	err = f.uc.DeleteBooking(ctxForUser(f.providerID, entity.RoleIDProvider), completed.ID)
	assert.ErrorIs(t, err, usecase.ErrBookingNotDeletable)

	pending := f.seedBooking(entity.BookingStatusPending, time.Now().UTC())
	err = f.uc.DeleteBooking(ctxForUser(uuid.New(), entity.RoleIDCustomer), pending.ID)
	assert.ErrorIs(t, err, usecase.ErrBookingAccessDenied)

	// Admins may clean up on behalf of users
	err = f.uc.DeleteBooking(ctxForUser(uuid.New(), entity.RoleIDAdmin), pending.ID)
	assert.NoError(t, err)
}

func TestTransitionConcurrentRequestsOneWins(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.seedBooking(entity.BookingStatusPending, time.Now().UTC().Add(24*time.Hour))

	var wg sync.WaitGroup
	var rejectErr, cancelErr error

	// Both targets are terminal, so the requests cannot both succeed by
	// serializing; exactly one must win.
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, rejectErr = f.uc.Transition(ctxForUser(f.providerID, entity.RoleIDProvider), booking.ID,
			&dto.UpdateBookingStatusRequest{Status: "rejected"})
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = f.uc.Transition(ctxForUser(f.customerID, entity.RoleIDCustomer), booking.ID,
			&dto.UpdateBookingStatusRequest{Status: "cancelled"})
	}()
	wg.Wait()

	stored, _ := f.bookingRepo.FindByID(nil, booking.ID)

	if rejectErr == nil && cancelErr == nil {
		t.Fatalf("both transitions succeeded; final status %s", stored.Status)
	}
	if rejectErr != nil && cancelErr != nil {
		t.Fatalf("both transitions failed: %v / %v", rejectErr, cancelErr)
	}

	// The loser either lost the conditional update or loaded the winner's
	// terminal status and was told the edge is illegal.
	if rejectErr == nil {
		assert.Equal(t, entity.BookingStatusRejected, stored.Status)
		assert.True(t, errors.Is(cancelErr, usecase.ErrBookingConflict) || errors.Is(cancelErr, entity.ErrInvalidTransition),
			"unexpected loser error: %v", cancelErr)
	} else {
		assert.Equal(t, entity.BookingStatusCancelled, stored.Status)
		assert.True(t, errors.Is(rejectErr, usecase.ErrBookingConflict) || errors.Is(rejectErr, entity.ErrInvalidTransition),
			"unexpected loser error: %v", rejectErr)
	}
}
