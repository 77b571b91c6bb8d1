package services

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/smarttransit/bus-reservation-backend/internal/models"
)

// OccupancyStore provides the confirmed-reservation count behind the reporter
type OccupancyStore interface {
	CountConfirmed(busID string, date time.Time) (int, error)
}

// OccupancyService derives per-bus, per-date seat usage from reservation
// rows. It holds no state of its own; every call recomputes from storage.
type OccupancyService struct {
	buses BusCatalog
	store OccupancyStore
}

// NewOccupancyService creates a new OccupancyService
func NewOccupancyService(buses BusCatalog, store OccupancyStore) *OccupancyService {
	return &OccupancyService{buses: buses, store: store}
}

// Occupancy returns seat usage for a bus on a date. The occupancy rate is a
// percentage rounded to precision decimal places; different callers use
// different precisions, so it is a parameter rather than a fixed policy.
func (s *OccupancyService) Occupancy(busID string, date time.Time, precision int) (*models.OccupancyStats, error) {
	bus, err := s.buses.GetByID(busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}

	reserved, err := s.store.CountConfirmed(busID, date)
	if err != nil {
		return nil, err
	}

	var rate float64
	if bus.TotalSeats > 0 {
		rate = roundTo(float64(reserved)/float64(bus.TotalSeats)*100, precision)
	}

	return &models.OccupancyStats{
		BusID:     busID,
		Date:      date.Format(models.DateLayout),
		Total:     bus.TotalSeats,
		Reserved:  reserved,
		Available: bus.TotalSeats - reserved,
		Rate:      rate,
	}, nil
}

func roundTo(value float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(value*factor) / factor
}
