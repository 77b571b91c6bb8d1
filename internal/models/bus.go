package models

import (
	"time"
)

// BusType represents the seating configuration of a bus
type BusType string

const (
	BusType28Seat BusType = "28-seat"
	BusType45Seat BusType = "45-seat"
)

// Bus represents a bus operating on a fixed commuter route.
// The reservation core treats it as a read-only capacity lookup.
type Bus struct {
	ID            string    `json:"id" db:"id"`
	BusNumber     string    `json:"bus_number" db:"bus_number"`
	RouteID       string    `json:"route_id" db:"route_id"`
	DriverID      *string   `json:"driver_id,omitempty" db:"driver_id"`
	BusType       BusType   `json:"bus_type" db:"bus_type"`
	TotalSeats    int       `json:"total_seats" db:"total_seats"`
	DepartureTime string    `json:"departure_time" db:"departure_time"` // Format: HH:MM
	ArrivalTime   string    `json:"arrival_time" db:"arrival_time"`     // Format: HH:MM
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BusRoute represents a named route between two locations
type BusRoute struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	DepartureLocation string    `json:"departure_location" db:"departure_location"`
	Destination       string    `json:"destination" db:"destination"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// BusWithRoute is the catalog view returned to riders when browsing buses
type BusWithRoute struct {
	Bus
	RouteName         string `json:"route_name" db:"route_name"`
	DepartureLocation string `json:"departure_location" db:"departure_location"`
	Destination       string `json:"destination" db:"destination"`
}

// OccupancyStats summarises seat usage for a bus on a calendar date
type OccupancyStats struct {
	BusID     string  `json:"bus_id"`
	Date      string  `json:"date"`
	Total     int     `json:"total_seats"`
	Reserved  int     `json:"reserved_seats"`
	Available int     `json:"available_seats"`
	Rate      float64 `json:"occupancy_rate"`
}
