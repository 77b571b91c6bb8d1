package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
)

// BusHandler exposes the read-only trip catalog
type BusHandler struct {
	busRepo *database.BusRepository
}

// NewBusHandler creates a new BusHandler
func NewBusHandler(busRepo *database.BusRepository) *BusHandler {
	return &BusHandler{busRepo: busRepo}
}

// GetBuses lists all active buses with route info
func (h *BusHandler) GetBuses(c *gin.Context) {
	buses, err := h.busRepo.GetActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get buses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// GetBus retrieves a bus by ID
func (h *BusHandler) GetBus(c *gin.Context) {
	bus, err := h.busRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bus"})
		return
	}

	c.JSON(http.StatusOK, bus)
}

// GetMyDriverBuses lists the buses assigned to the authenticated driver
func (h *BusHandler) GetMyDriverBuses(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	buses, err := h.busRepo.GetByDriverID(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get buses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buses": buses})
}
