package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// DateLayout is the wire format for reservation dates (calendar date, no time component)
const DateLayout = "2006-01-02"

// seatNumberPattern matches seat tokens like "1A" or "12C" (row number + column letter A-D)
var seatNumberPattern = regexp.MustCompile(`^\d+[A-D]$`)

// Reservation represents a single confirmed seat on a bus for a calendar date
type Reservation struct {
	ID              string            `json:"id" db:"id"`
	UserID          string            `json:"user_id" db:"user_id"`
	BusID           string            `json:"bus_id" db:"bus_id"`
	SeatNumber      string            `json:"seat_number" db:"seat_number"`
	ReservationDate time.Time         `json:"reservation_date" db:"reservation_date"`
	Status          ReservationStatus `json:"status" db:"status"`
	CancelledBy     *string           `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// IsConfirmed reports whether the reservation currently holds its seat
func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}

// IsCancelled reports whether the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == ReservationStatusCancelled
}

// IsCompleted reports whether the reservation reached its terminal completed state
func (r *Reservation) IsCompleted() bool {
	return r.Status == ReservationStatusCompleted
}

// CreateReservationRequest represents a rider booking intent for one or more seats
type CreateReservationRequest struct {
	BusID           string   `json:"bus_id" binding:"required"`
	ReservationDate string   `json:"reservation_date" binding:"required"` // Format: YYYY-MM-DD
	SeatNumbers     []string `json:"seat_numbers" binding:"required"`
}

// AdminCreateReservationRequest represents an admin booking on behalf of a target user
type AdminCreateReservationRequest struct {
	UserID          string   `json:"user_id" binding:"required"`
	BusID           string   `json:"bus_id" binding:"required"`
	ReservationDate string   `json:"reservation_date" binding:"required"` // Format: YYYY-MM-DD
	SeatNumbers     []string `json:"seat_numbers" binding:"required"`
}

// Validate validates the create reservation request
func (req *CreateReservationRequest) Validate() error {
	if len(req.SeatNumbers) == 0 {
		return errors.New("seat_numbers must not be empty")
	}

	if _, err := ParseReservationDate(req.ReservationDate); err != nil {
		return err
	}

	return nil
}

// Validate validates the admin create reservation request
func (req *AdminCreateReservationRequest) Validate() error {
	if req.UserID == "" {
		return errors.New("user_id is required")
	}

	if len(req.SeatNumbers) == 0 {
		return errors.New("seat_numbers must not be empty")
	}

	if _, err := ParseReservationDate(req.ReservationDate); err != nil {
		return err
	}

	return nil
}

// ParseReservationDate parses a YYYY-MM-DD date string
func ParseReservationDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation_date %q: expected format YYYY-MM-DD", value)
	}
	return date, nil
}

// ValidSeatNumber reports whether a seat token matches the seat grammar
func ValidSeatNumber(seat string) bool {
	return seatNumberPattern.MatchString(seat)
}

// InvalidSeatNumbers returns the tokens that fail the seat grammar
func InvalidSeatNumbers(seats []string) []string {
	var invalid []string
	for _, seat := range seats {
		if !ValidSeatNumber(seat) {
			invalid = append(invalid, seat)
		}
	}
	return invalid
}

// DuplicateSeatNumbers returns the tokens that appear more than once in the request
func DuplicateSeatNumbers(seats []string) []string {
	seen := make(map[string]int, len(seats))
	var duplicates []string
	for _, seat := range seats {
		seen[seat]++
		if seen[seat] == 2 {
			duplicates = append(duplicates, seat)
		}
	}
	return duplicates
}

// SeatRow extracts the numeric row prefix of a valid seat token.
// Malformed tokens return 0; callers validate the grammar first.
func SeatRow(seat string) int {
	if !ValidSeatNumber(seat) {
		return 0
	}
	row, err := strconv.Atoi(seat[:len(seat)-1])
	if err != nil {
		return 0
	}
	return row
}

// OutOfRangeSeatNumbers returns the tokens whose row prefix exceeds the bus capacity
func OutOfRangeSeatNumbers(seats []string, totalSeats int) []string {
	var outOfRange []string
	for _, seat := range seats {
		if SeatRow(seat) > totalSeats {
			outOfRange = append(outOfRange, seat)
		}
	}
	return outOfRange
}
