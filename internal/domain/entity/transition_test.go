package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideTransitionLegalEdges(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		actor   ActorRole
		hasEvid bool
	}{
		{"provider confirms pending", BookingStatusPending, BookingStatusConfirmed, ActorProvider, false},
		{"provider rejects pending", BookingStatusPending, BookingStatusRejected, ActorProvider, false},
		{"customer cancels pending", BookingStatusPending, BookingStatusCancelled, ActorCustomer, false},
		{"provider cancels pending", BookingStatusPending, BookingStatusCancelled, ActorProvider, false},
		{"provider starts confirmed", BookingStatusConfirmed, BookingStatusInProgress, ActorProvider, false},
		{"customer cancels confirmed", BookingStatusConfirmed, BookingStatusCancelled, ActorCustomer, false},
		{"provider cancels confirmed", BookingStatusConfirmed, BookingStatusCancelled, ActorProvider, false},
		{"provider completes in progress", BookingStatusInProgress, BookingStatusCompleted, ActorProvider, true},
		{"customer cancels in progress", BookingStatusInProgress, BookingStatusCancelled, ActorCustomer, false},
		{"provider cancels in progress", BookingStatusInProgress, BookingStatusCancelled, ActorProvider, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecideTransition(tt.from, tt.to, tt.actor, now, past, tt.hasEvid)
			assert.NoError(t, err)
		})
	}
}

func TestDecideTransitionIllegalEdges(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
	}{
		{"pending cannot skip to in progress", BookingStatusPending, BookingStatusInProgress},
		{"pending cannot skip to completed", BookingStatusPending, BookingStatusCompleted},
		{"confirmed cannot go back to pending", BookingStatusConfirmed, BookingStatusPending},
		{"confirmed cannot skip to completed", BookingStatusConfirmed, BookingStatusCompleted},
		{"confirmed cannot be rejected", BookingStatusConfirmed, BookingStatusRejected},
		{"in progress cannot go back to confirmed", BookingStatusInProgress, BookingStatusConfirmed},
		{"completed is final", BookingStatusCompleted, BookingStatusCancelled},
		{"cancelled is final", BookingStatusCancelled, BookingStatusPending},
		{"rejected is final", BookingStatusRejected, BookingStatusConfirmed},
		{"self transition is illegal", BookingStatusPending, BookingStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecideTransition(tt.from, tt.to, ActorProvider, now, now, true)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestDecideTransitionActorGate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Confirmation, rejection, start and completion are provider moves
	err := DecideTransition(BookingStatusPending, BookingStatusConfirmed, ActorCustomer, now, now, false)
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	err = DecideTransition(BookingStatusPending, BookingStatusRejected, ActorCustomer, now, now, false)
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	err = DecideTransition(BookingStatusConfirmed, BookingStatusInProgress, ActorCustomer, now, now, false)
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	err = DecideTransition(BookingStatusInProgress, BookingStatusCompleted, ActorCustomer, now, now, true)
	assert.ErrorIs(t, err, ErrActorNotAllowed)
}

func TestDecideTransitionTimeGate(t *testing.T) {
	scheduledAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	// One minute before the appointment: too early to start
	err := DecideTransition(BookingStatusConfirmed, BookingStatusInProgress, ActorProvider,
		scheduledAt.Add(-time.Minute), scheduledAt, false)
	assert.ErrorIs(t, err, ErrTransitionTooEarly)

	// Exactly on time is allowed
	err = DecideTransition(BookingStatusConfirmed, BookingStatusInProgress, ActorProvider,
		scheduledAt, scheduledAt, false)
	assert.NoError(t, err)

	// After the scheduled time is allowed
	err = DecideTransition(BookingStatusConfirmed, BookingStatusInProgress, ActorProvider,
		scheduledAt.Add(time.Hour), scheduledAt, false)
	assert.NoError(t, err)

	// The gate only applies to starting work; cancelling early is fine
	err = DecideTransition(BookingStatusConfirmed, BookingStatusCancelled, ActorCustomer,
		scheduledAt.Add(-24*time.Hour), scheduledAt, false)
	assert.NoError(t, err)
}

func TestDecideTransitionEvidenceGate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	err := DecideTransition(BookingStatusInProgress, BookingStatusCompleted, ActorProvider, now, now, false)
	assert.ErrorIs(t, err, ErrEvidenceRequired)

	err = DecideTransition(BookingStatusInProgress, BookingStatusCompleted, ActorProvider, now, now, true)
	assert.NoError(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.False(t, BookingStatusInProgress.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusRejected.IsTerminal())
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusConfirmed))
	assert.True(t, BookingStatusInProgress.CanTransitionTo(BookingStatusCompleted))
	assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatusCompleted))
	assert.False(t, BookingStatusCompleted.CanTransitionTo(BookingStatusPending))
}

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "in_progress", "completed", "cancelled", "rejected"} {
		status, err := ParseBookingStatus(s)
		require.NoError(t, err)
		assert.Equal(t, BookingStatus(s), status)
	}

	_, err := ParseBookingStatus("archived")
	assert.Error(t, err)

	// Status values are case sensitive
	_, err = ParseBookingStatus("PENDING")
	assert.Error(t, err)
}
