package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBookingScheduledAt(t *testing.T) {
	booking := &Booking{
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "14:30",
	}

	at, err := booking.ScheduledAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), at)

	// postgres time columns round-trip with seconds
	booking.ScheduledTime = "14:30:00"
	at, err = booking.ScheduledAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), at)
}

func TestBookingScheduledAtUnparsableTime(t *testing.T) {
	booking := &Booking{
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "noon",
	}

	_, err := booking.ScheduledAt()
	assert.Error(t, err)
}

func TestBookingActorFor(t *testing.T) {
	customerID := uuid.New()
	providerID := uuid.New()
	booking := &Booking{CustomerID: customerID, ProviderID: providerID}

	actor, ok := booking.ActorFor(customerID)
	assert.True(t, ok)
	assert.Equal(t, ActorCustomer, actor)

	actor, ok = booking.ActorFor(providerID)
	assert.True(t, ok)
	assert.Equal(t, ActorProvider, actor)

	_, ok = booking.ActorFor(uuid.New())
	assert.False(t, ok)
}

func TestBookingIsDeletable(t *testing.T) {
	deletable := []BookingStatus{BookingStatusPending, BookingStatusCancelled, BookingStatusRejected}
	for _, status := range deletable {
		assert.True(t, (&Booking{Status: status}).IsDeletable(), "status %s", status)
	}

	kept := []BookingStatus{BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCompleted}
	for _, status := range kept {
		assert.False(t, (&Booking{Status: status}).IsDeletable(), "status %s", status)
	}
}

func TestBookingHasEvidence(t *testing.T) {
	booking := &Booking{}
	assert.False(t, booking.HasEvidence())

	empty := ""
	booking.EvidenceURL = &empty
	assert.False(t, booking.HasEvidence())

	url := "https://cdn.example.com/evidence/abc.jpg"
	booking.EvidenceURL = &url
	assert.True(t, booking.HasEvidence())
}
