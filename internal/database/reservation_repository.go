package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/smarttransit/bus-reservation-backend/internal/models"
)

// SeatTakenError reports an insert that lost to an existing confirmed
// reservation for the same (bus, date, seat) key. It is raised by the
// partial unique index, so it fires even if two processes race past the
// in-memory availability check.
type SeatTakenError struct {
	SeatNumber string
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %s already has a confirmed reservation", e.SeatNumber)
}

// ReservationRepository handles database operations for the reservations table.
// It holds *sqlx.DB rather than the DB interface because the bulk insert path
// needs transactions.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, user_id, bus_id, seat_number, reservation_date,
	   status, cancelled_by, created_at, updated_at`

// CreateBatch inserts one confirmed reservation row per seat inside a single
// transaction: either every row becomes visible or none do. A unique-index
// violation rolls the whole batch back and is returned as *SeatTakenError
// naming the losing seat.
func (r *ReservationRepository) CreateBatch(userID, busID string, date time.Time, seatNumbers []string) ([]models.Reservation, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reservations (id, user_id, bus_id, seat_number, reservation_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	reservations := make([]models.Reservation, 0, len(seatNumbers))
	for _, seat := range seatNumbers {
		reservation := models.Reservation{
			ID:              uuid.New().String(),
			UserID:          userID,
			BusID:           busID,
			SeatNumber:      seat,
			ReservationDate: date,
			Status:          models.ReservationStatusConfirmed,
		}

		err := tx.QueryRowx(query,
			reservation.ID, reservation.UserID, reservation.BusID,
			reservation.SeatNumber, reservation.ReservationDate, reservation.Status,
		).Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return nil, &SeatTakenError{SeatNumber: seat}
			}
			return nil, fmt.Errorf("failed to insert reservation for seat %s: %w", seat, err)
		}

		reservations = append(reservations, reservation)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservations: %w", err)
	}

	return reservations, nil
}

// OccupiedSeats returns the seat tokens with a confirmed reservation for the
// given bus and date. Cancelled and completed rows never occupy a seat.
func (r *ReservationRepository) OccupiedSeats(busID string, date time.Time) ([]string, error) {
	query := `
		SELECT seat_number
		FROM reservations
		WHERE bus_id = $1
		  AND reservation_date = $2
		  AND status = 'confirmed'
		ORDER BY seat_number
	`

	seats := []string{}
	if err := r.db.Select(&seats, query, busID, date); err != nil {
		return nil, fmt.Errorf("failed to fetch occupied seats: %w", err)
	}

	return seats, nil
}

// CountConfirmed returns the number of confirmed reservations for a bus and date
func (r *ReservationRepository) CountConfirmed(busID string, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE bus_id = $1
		  AND reservation_date = $2
		  AND status = 'confirmed'
	`

	var count int
	if err := r.db.Get(&count, query, busID, date); err != nil {
		return 0, fmt.Errorf("failed to count confirmed reservations: %w", err)
	}

	return count, nil
}

// GetByID retrieves a reservation by ID
func (r *ReservationRepository) GetByID(reservationID string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var reservation models.Reservation
	if err := r.db.Get(&reservation, query, reservationID); err != nil {
		return nil, err
	}

	return &reservation, nil
}

// GetByUserID retrieves all reservations owned by a user, newest first
func (r *ReservationRepository) GetByUserID(userID string) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	reservations := []models.Reservation{}
	if err := r.db.Select(&reservations, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch user reservations: %w", err)
	}

	return reservations, nil
}

// GetByBusAndDate retrieves every reservation row for a bus and date,
// including cancelled history
func (r *ReservationRepository) GetByBusAndDate(busID string, date time.Time) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE bus_id = $1
		  AND reservation_date = $2
		ORDER BY seat_number, created_at
	`

	reservations := []models.Reservation{}
	if err := r.db.Select(&reservations, query, busID, date); err != nil {
		return nil, fmt.Errorf("failed to fetch reservations for bus: %w", err)
	}

	return reservations, nil
}

// GetAll retrieves all reservations, newest first
func (r *ReservationRepository) GetAll(limit, offset int) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	reservations := []models.Reservation{}
	if err := r.db.Select(&reservations, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	return reservations, nil
}

// Cancel flips a confirmed reservation to cancelled and records the
// cancelling actor. The row is never deleted; the seat frees up because
// OccupiedSeats only counts confirmed rows. The status predicate keeps a row
// that left the confirmed state after the caller's read (a concurrent cancel
// or completion) from being overwritten; such updates match zero rows and
// surface as sql.ErrNoRows for the caller to re-read.
func (r *ReservationRepository) Cancel(reservationID, cancelledBy string) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled',
			cancelled_by = $2,
			updated_at = NOW()
		WHERE id = $1
		  AND status = 'confirmed'
		RETURNING ` + reservationColumns

	var reservation models.Reservation
	err := r.db.Get(&reservation, query, reservationID, cancelledBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	return &reservation, nil
}
