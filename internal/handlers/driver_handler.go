package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
	"github.com/smarttransit/bus-reservation-backend/internal/models"
)

// DriverHandler exposes the manifest view for drivers: the reservations on
// buses they are assigned to
type DriverHandler struct {
	busRepo         *database.BusRepository
	reservationRepo *database.ReservationRepository
}

// NewDriverHandler creates a new DriverHandler
func NewDriverHandler(busRepo *database.BusRepository, reservationRepo *database.ReservationRepository) *DriverHandler {
	return &DriverHandler{busRepo: busRepo, reservationRepo: reservationRepo}
}

// GetBusReservations lists the reservations for a bus and date. Only the
// bus's assigned driver (or an admin) may read the manifest.
func (h *DriverHandler) GetBusReservations(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus, err := h.busRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bus"})
		return
	}

	assigned := bus.DriverID != nil && *bus.DriverID == userCtx.UserID.String()
	if !assigned && !userCtx.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this bus's reservations"})
		return
	}

	reservations, err := h.reservationRepo.GetByBusAndDate(bus.ID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bus_id":       bus.ID,
		"date":         date.Format(models.DateLayout),
		"reservations": reservations,
	})
}
