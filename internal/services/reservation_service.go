package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/models"
)

// Actor is the boundary-resolved identity passed into the engines. Role
// resolution happens in the auth middleware; the core only consumes the
// resulting capability flag.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// BusCatalog is the read-only trip catalog consumed during validation
type BusCatalog interface {
	GetByID(busID string) (*models.Bus, error)
}

// ReservationStore is the storage surface the engines drive
type ReservationStore interface {
	CreateBatch(userID, busID string, date time.Time, seatNumbers []string) ([]models.Reservation, error)
	OccupiedSeats(busID string, date time.Time) ([]string, error)
	GetByID(reservationID string) (*models.Reservation, error)
	Cancel(reservationID, cancelledBy string) (*models.Reservation, error)
}

// ReservationService implements the booking and cancellation engines. All
// check-then-insert work for a given (bus, date) runs under that key's lock,
// so two overlapping booking intents can never both pass the availability
// check. The partial unique index in storage backstops the same invariant
// across processes.
type ReservationService struct {
	buses    BusCatalog
	store    ReservationStore
	locks    *seatLockTable
	lockWait time.Duration
	maxSeats int
	logger   *logrus.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(buses BusCatalog, store ReservationStore, lockWait time.Duration, maxSeats int, logger *logrus.Logger) *ReservationService {
	return &ReservationService{
		buses:    buses,
		store:    store,
		locks:    newSeatLockTable(),
		lockWait: lockWait,
		maxSeats: maxSeats,
		logger:   logger,
	}
}

// Book reserves the requested seats for the acting user. The whole intent is
// atomic: it either returns one confirmed reservation per requested seat or
// an error with zero rows created.
func (s *ReservationService) Book(actor Actor, busID string, date time.Time, seatNumbers []string) ([]models.Reservation, error) {
	return s.book(actor.UserID, busID, date, seatNumbers)
}

// BookFor reserves seats on behalf of a target user. Admin only; the
// validation and atomicity contract is identical to Book.
func (s *ReservationService) BookFor(actor Actor, targetUserID, busID string, date time.Time, seatNumbers []string) ([]models.Reservation, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}
	return s.book(targetUserID, busID, date, seatNumbers)
}

func (s *ReservationService) book(userID, busID string, date time.Time, seatNumbers []string) ([]models.Reservation, error) {
	// Precondition checks run in a fixed order and short-circuit before any
	// write. Request-shape checks first; they need no storage access.
	if len(seatNumbers) == 0 {
		return nil, ErrNoSeatsRequested
	}
	if duplicates := models.DuplicateSeatNumbers(seatNumbers); len(duplicates) > 0 {
		return nil, &DuplicateSeatError{Seats: duplicates}
	}
	if s.maxSeats > 0 && len(seatNumbers) > s.maxSeats {
		return nil, &TooManySeatsError{Max: s.maxSeats}
	}

	bus, err := s.buses.GetByID(busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	if !bus.IsActive {
		return nil, ErrBusNotFound
	}

	if invalid := models.InvalidSeatNumbers(seatNumbers); len(invalid) > 0 {
		return nil, &InvalidSeatError{Seats: invalid}
	}
	if outOfRange := models.OutOfRangeSeatNumbers(seatNumbers, bus.TotalSeats); len(outOfRange) > 0 {
		return nil, &SeatOutOfRangeError{Seats: outOfRange}
	}

	// The availability read and the insert must observe the same occupancy
	// state, so both happen under the (bus, date) lock.
	key := lockKey(busID, date)
	if !s.locks.Acquire(key, s.lockWait) {
		s.logger.WithFields(logrus.Fields{"bus_id": busID, "date": date.Format(models.DateLayout)}).
			Warn("Booking lock wait exceeded")
		return nil, ErrBusy
	}
	defer s.locks.Release(key)

	occupied, err := s.store.OccupiedSeats(busID, date)
	if err != nil {
		return nil, err
	}

	occupiedSet := make(map[string]struct{}, len(occupied))
	for _, seat := range occupied {
		occupiedSet[seat] = struct{}{}
	}

	var conflicts []string
	for _, seat := range seatNumbers {
		if _, taken := occupiedSet[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		return nil, &SeatConflictError{Seats: conflicts}
	}

	reservations, err := s.store.CreateBatch(userID, busID, date, seatNumbers)
	if err != nil {
		// The partial unique index caught a confirmed row this process never
		// observed, e.g. a write from another instance. Report it as a
		// conflict, not a storage failure.
		var taken *database.SeatTakenError
		if errors.As(err, &taken) {
			return nil, &SeatConflictError{Seats: []string{taken.SeatNumber}}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"bus_id":  busID,
		"date":    date.Format(models.DateLayout),
		"seats":   seatNumbers,
	}).Info("Reservations confirmed")

	return reservations, nil
}

// Cancel transitions a reservation to cancelled and records the cancelling
// actor. Cancelling an already-cancelled reservation is a no-op success.
// Completed reservations are terminal and refuse cancellation.
func (s *ReservationService) Cancel(actor Actor, reservationID string) (*models.Reservation, error) {
	reservation, err := s.store.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.UserID != actor.UserID && !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}
	if reservation.IsCancelled() {
		return reservation, nil
	}
	if reservation.IsCompleted() {
		return nil, ErrReservationCompleted
	}

	// A cancellation frees a seat, so it takes the same lock as bookings for
	// this (bus, date): a concurrent booking observes the seat either before
	// or after the flip, never mid-flip.
	key := lockKey(reservation.BusID, reservation.ReservationDate)
	if !s.locks.Acquire(key, s.lockWait) {
		return nil, ErrBusy
	}
	defer s.locks.Release(key)

	// Re-read under the lock; a concurrent cancel may have won the race.
	reservation, err = s.store.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if reservation.IsCancelled() {
		return reservation, nil
	}
	if reservation.IsCompleted() {
		return nil, ErrReservationCompleted
	}

	cancelled, err := s.store.Cancel(reservationID, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The update only touches confirmed rows. Zero rows means the
			// reservation left the confirmed state after the locked re-read,
			// e.g. the completion job claimed it; re-read and report the
			// actual state.
			return s.reportCancelRace(reservationID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"cancelled_by":   actor.UserID,
		"bus_id":         cancelled.BusID,
		"seat":           cancelled.SeatNumber,
	}).Info("Reservation cancelled")

	return cancelled, nil
}

func (s *ReservationService) reportCancelRace(reservationID string) (*models.Reservation, error) {
	reservation, err := s.store.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if reservation.IsCancelled() {
		return reservation, nil
	}
	if reservation.IsCompleted() {
		return nil, ErrReservationCompleted
	}
	return nil, fmt.Errorf("reservation %s changed state during cancellation", reservationID)
}

// OccupiedSeats exposes the occupancy snapshot for a bus and date
func (s *ReservationService) OccupiedSeats(busID string, date time.Time) ([]string, error) {
	return s.store.OccupiedSeats(busID, date)
}
