package usecase_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*entity.Review
}

func (r *fakeReviewRepo) Create(_ *gorm.DB, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	stored := *review
	r.reviews[review.BookingID] = &stored
	return nil
}

func (r *fakeReviewRepo) FindByBookingID(_ *gorm.DB, bookingID uuid.UUID) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *review
	return &copied, nil
}

func (r *fakeReviewRepo) FindByServiceID(_ *gorm.DB, serviceID uuid.UUID) ([]entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Review
	for _, review := range r.reviews {
		if review.ServiceID == serviceID {
			out = append(out, *review)
		}
	}
	return out, nil
}

type reviewFixture struct {
	uc          usecase.ReviewUsecase
	reviewRepo  *fakeReviewRepo
	bookingRepo *fakeBookingRepo
	customerID  uuid.UUID
	serviceID   uuid.UUID
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	f := &reviewFixture{
		reviewRepo:  &fakeReviewRepo{reviews: map[uuid.UUID]*entity.Review{}},
		bookingRepo: newFakeBookingRepo(),
		customerID:  uuid.New(),
		serviceID:   uuid.New(),
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db}
	f.uc = usecase.NewReviewUsecase(db, log, f.reviewRepo, f.bookingRepo, &fakeAuditService{})
	return f
}

func (f *reviewFixture) seedBooking(status entity.BookingStatus) *entity.Booking {
	booking := &entity.Booking{
		ID:            uuid.New(),
		ServiceID:     f.serviceID,
		CustomerID:    f.customerID,
		ProviderID:    uuid.New(),
		Status:        status,
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
	}
	f.bookingRepo.Create(nil, booking)
	return booking
}

func TestCreateReviewForCompletedBooking(t *testing.T) {
	f := newReviewFixture(t)
	booking := f.seedBooking(entity.BookingStatusCompleted)

	resp, err := f.uc.Create(ctxForUser(f.customerID, entity.RoleIDCustomer), &dto.CreateReviewRequest{
		BookingID: booking.ID,
		Rating:    5,
		Comment:   "spotless work",
	})
	require.NoError(t, err)
	assert.Equal(t, booking.ID, resp.BookingID)
	assert.Equal(t, f.serviceID, resp.ServiceID)
	assert.Equal(t, 5, resp.Rating)
}

func TestCreateReviewRequiresCompletion(t *testing.T) {
	f := newReviewFixture(t)

	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusConfirmed,
		entity.BookingStatusInProgress,
		entity.BookingStatusCancelled,
		entity.BookingStatusRejected,
	} {
		booking := f.seedBooking(status)
		_, err := f.uc.Create(ctxForUser(f.customerID, entity.RoleIDCustomer), &dto.CreateReviewRequest{
			BookingID: booking.ID,
			Rating:    4,
		})
		assert.ErrorIs(t, err, usecase.ErrBookingNotCompleted, "status %s", status)
	}
}

func TestCreateReviewOnePerBooking(t *testing.T) {
	f := newReviewFixture(t)
	booking := f.seedBooking(entity.BookingStatusCompleted)
	ctx := ctxForUser(f.customerID, entity.RoleIDCustomer)

	_, err := f.uc.Create(ctx, &dto.CreateReviewRequest{BookingID: booking.ID, Rating: 5})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, &dto.CreateReviewRequest{BookingID: booking.ID, Rating: 1})
	assert.ErrorIs(t, err, usecase.ErrBookingAlreadyReviewed)
}

func TestCreateReviewOnlyByBookingCustomer(t *testing.T) {
	f := newReviewFixture(t)
	booking := f.seedBooking(entity.BookingStatusCompleted)

	_, err := f.uc.Create(ctxForUser(uuid.New(), entity.RoleIDCustomer), &dto.CreateReviewRequest{
		BookingID: booking.ID,
		Rating:    3,
	})
	assert.ErrorIs(t, err, usecase.ErrBookingAccessDenied)

	_, err = f.uc.Create(ctxForUser(f.customerID, entity.RoleIDCustomer), &dto.CreateReviewRequest{
		BookingID: uuid.New(),
		Rating:    3,
	})
	assert.ErrorIs(t, err, usecase.ErrBookingNotFound)
}

func TestGetReviewsByService(t *testing.T) {
	f := newReviewFixture(t)
	ctx := ctxForUser(f.customerID, entity.RoleIDCustomer)

	first := f.seedBooking(entity.BookingStatusCompleted)
	second := f.seedBooking(entity.BookingStatusCompleted)

	_, err := f.uc.Create(ctx, &dto.CreateReviewRequest{BookingID: first.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, &dto.CreateReviewRequest{BookingID: second.ID, Rating: 3})
	require.NoError(t, err)

	list, err := f.uc.GetByServiceID(ctx, f.serviceID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Reviews, 2)
}
