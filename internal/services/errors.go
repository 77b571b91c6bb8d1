package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failures surfaced by the booking and cancellation engines. Precondition
// failures are always detected before any write, so a returned error means
// zero new rows were created for the intent.
var (
	// ErrBusNotFound is returned when the requested bus does not exist or is inactive
	ErrBusNotFound = errors.New("bus not found")

	// ErrReservationNotFound is returned when the reservation id matches no row
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotAuthorized is returned when the actor owns neither the reservation
	// nor elevated privilege
	ErrNotAuthorized = errors.New("not authorized to modify this reservation")

	// ErrNoSeatsRequested is returned when a booking intent names no seats
	ErrNoSeatsRequested = errors.New("no seats requested")

	// ErrBusy is returned when the (bus, date) lock could not be acquired
	// within the configured bound. Distinct from a seat conflict: callers
	// should retry shortly.
	ErrBusy = errors.New("booking is busy, try again shortly")

	// ErrReservationCompleted is returned when cancelling a completed
	// reservation; completed is a terminal state.
	ErrReservationCompleted = errors.New("completed reservations cannot be cancelled")
)

// DuplicateSeatError reports seat tokens repeated within a single request
type DuplicateSeatError struct {
	Seats []string
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("duplicate seats in request: %s", strings.Join(e.Seats, ", "))
}

// InvalidSeatError reports seat tokens that fail the seat grammar
type InvalidSeatError struct {
	Seats []string
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("invalid seat numbers: %s", strings.Join(e.Seats, ", "))
}

// SeatOutOfRangeError reports seat tokens whose row exceeds the bus capacity
type SeatOutOfRangeError struct {
	Seats []string
}

func (e *SeatOutOfRangeError) Error() string {
	return fmt.Sprintf("seat numbers exceed bus capacity: %s", strings.Join(e.Seats, ", "))
}

// TooManySeatsError reports a booking intent larger than the configured cap
type TooManySeatsError struct {
	Max int
}

func (e *TooManySeatsError) Error() string {
	return fmt.Sprintf("at most %d seats can be reserved in one request", e.Max)
}

// SeatConflictError reports the exact seats already held by confirmed
// reservations; the request created nothing.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already reserved: %s", strings.Join(e.Seats, ", "))
}
