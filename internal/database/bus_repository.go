package database

import (
	"database/sql"
	"fmt"

	"github.com/smarttransit/bus-reservation-backend/internal/models"
)

// BusRepository is the read-only trip catalog: bus identity, capacity and
// active flag. Route and bus mutation is an administrative concern handled
// outside this service.
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(busID string) (*models.Bus, error) {
	query := `
		SELECT id, bus_number, route_id, driver_id, bus_type, total_seats,
			   departure_time, arrival_time, is_active, created_at
		FROM buses
		WHERE id = $1
	`

	return r.scanBus(r.db.QueryRow(query, busID))
}

// GetActive retrieves all active buses with their route info
func (r *BusRepository) GetActive() ([]models.BusWithRoute, error) {
	query := `
		SELECT b.id, b.bus_number, b.route_id, b.driver_id, b.bus_type, b.total_seats,
			   b.departure_time, b.arrival_time, b.is_active, b.created_at,
			   r.name AS route_name, r.departure_location, r.destination
		FROM buses b
		JOIN bus_routes r ON r.id = b.route_id
		WHERE b.is_active = TRUE
		ORDER BY b.departure_time, b.bus_number
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buses: %w", err)
	}
	defer rows.Close()

	buses := []models.BusWithRoute{}
	for rows.Next() {
		var bus models.BusWithRoute
		var driverID sql.NullString

		err := rows.Scan(
			&bus.ID, &bus.BusNumber, &bus.RouteID, &driverID, &bus.BusType, &bus.TotalSeats,
			&bus.DepartureTime, &bus.ArrivalTime, &bus.IsActive, &bus.CreatedAt,
			&bus.RouteName, &bus.DepartureLocation, &bus.Destination,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bus: %w", err)
		}

		if driverID.Valid {
			bus.DriverID = &driverID.String
		}

		buses = append(buses, bus)
	}

	return buses, rows.Err()
}

// GetByDriverID retrieves the buses assigned to a driver
func (r *BusRepository) GetByDriverID(driverID string) ([]models.Bus, error) {
	query := `
		SELECT id, bus_number, route_id, driver_id, bus_type, total_seats,
			   departure_time, arrival_time, is_active, created_at
		FROM buses
		WHERE driver_id = $1
		ORDER BY departure_time
	`

	rows, err := r.db.Query(query, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver buses: %w", err)
	}
	defer rows.Close()

	buses := []models.Bus{}
	for rows.Next() {
		var bus models.Bus
		var driver sql.NullString

		err := rows.Scan(
			&bus.ID, &bus.BusNumber, &bus.RouteID, &driver, &bus.BusType, &bus.TotalSeats,
			&bus.DepartureTime, &bus.ArrivalTime, &bus.IsActive, &bus.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bus: %w", err)
		}

		if driver.Valid {
			bus.DriverID = &driver.String
		}

		buses = append(buses, bus)
	}

	return buses, rows.Err()
}

// scanBus scans a single bus row
func (r *BusRepository) scanBus(row scanner) (*models.Bus, error) {
	bus := &models.Bus{}
	var driverID sql.NullString

	err := row.Scan(
		&bus.ID, &bus.BusNumber, &bus.RouteID, &driverID, &bus.BusType, &bus.TotalSeats,
		&bus.DepartureTime, &bus.ArrivalTime, &bus.IsActive, &bus.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		bus.DriverID = &driverID.String
	}

	return bus, nil
}
