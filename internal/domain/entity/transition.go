package entity

import (
	"errors"
	"time"
)

// ActorRole identifies who is acting on a booking. It is resolved once per
// request, relative to that booking's parties, never from a raw role string.
type ActorRole string

const (
	ActorCustomer ActorRole = "customer"
	ActorProvider ActorRole = "provider"
)

var (
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrActorNotAllowed    = errors.New("actor is not allowed to perform this transition")
	ErrTransitionTooEarly = errors.New("booking cannot start before its scheduled time")
	ErrEvidenceRequired   = errors.New("completion evidence is required")
)

type statusEdge struct {
	from BookingStatus
	to   BookingStatus
}

type transitionRule struct {
	actors        []ActorRole
	afterSchedule bool
	needsEvidence bool
}

// bookingTransitions defines the state machine for booking status changes.
// Any edge absent from this table is illegal for every actor.
var bookingTransitions = map[statusEdge]transitionRule{
	{BookingStatusPending, BookingStatusConfirmed}:    {actors: []ActorRole{ActorProvider}},
	{BookingStatusPending, BookingStatusRejected}:     {actors: []ActorRole{ActorProvider}},
	{BookingStatusPending, BookingStatusCancelled}:    {actors: []ActorRole{ActorCustomer, ActorProvider}},
	{BookingStatusConfirmed, BookingStatusInProgress}: {actors: []ActorRole{ActorProvider}, afterSchedule: true},
	{BookingStatusConfirmed, BookingStatusCancelled}:  {actors: []ActorRole{ActorCustomer, ActorProvider}},
	{BookingStatusInProgress, BookingStatusCompleted}: {actors: []ActorRole{ActorProvider}, needsEvidence: true},
	{BookingStatusInProgress, BookingStatusCancelled}: {actors: []ActorRole{ActorCustomer, ActorProvider}},
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	for edge := range bookingTransitions {
		if edge.from == s {
			return false
		}
	}
	return true
}

// CanTransitionTo returns true if some actor could legally move a booking
// from this status to the target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	_, ok := bookingTransitions[statusEdge{s, target}]
	return ok
}

// DecideTransition classifies a requested status change. It never mutates
// state; callers apply the change only when the verdict is nil.
//
// The scheduledAt guard makes the "work may not start early" rule
// authoritative server-side instead of a client-side countdown.
func DecideTransition(current, requested BookingStatus, actor ActorRole, now, scheduledAt time.Time, hasEvidence bool) error {
	rule, ok := bookingTransitions[statusEdge{current, requested}]
	if !ok {
		return ErrInvalidTransition
	}

	allowed := false
	for _, a := range rule.actors {
		if a == actor {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrActorNotAllowed
	}

	if rule.afterSchedule && now.Before(scheduledAt) {
		return ErrTransitionTooEarly
	}

	if rule.needsEvidence && !hasEvidence {
		return ErrEvidenceRequired
	}

	return nil
}
