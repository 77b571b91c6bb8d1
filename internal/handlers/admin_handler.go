package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
	"github.com/smarttransit/bus-reservation-backend/internal/models"
	"github.com/smarttransit/bus-reservation-backend/internal/services"
)

// AdminHandler handles administrative reservation operations. All routes are
// behind RequireRole("admin").
type AdminHandler struct {
	reservations    *services.ReservationService
	occupancy       *services.OccupancyService
	reservationRepo *database.ReservationRepository
	busRepo         *database.BusRepository
	auditService    *services.AuditService
	adminPrecision  int
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	reservations *services.ReservationService,
	occupancy *services.OccupancyService,
	reservationRepo *database.ReservationRepository,
	busRepo *database.BusRepository,
	auditService *services.AuditService,
	adminPrecision int,
) *AdminHandler {
	return &AdminHandler{
		reservations:    reservations,
		occupancy:       occupancy,
		reservationRepo: reservationRepo,
		busRepo:         busRepo,
		auditService:    auditService,
		adminPrecision:  adminPrecision,
	}
}

// CreateReservation books seats on behalf of a target user. Validation and
// atomicity are identical to the rider path; only the owner differs.
func (h *AdminHandler) CreateReservation(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AdminCreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, _ := models.ParseReservationDate(req.ReservationDate)
	actor := services.Actor{UserID: userCtx.UserID.String(), IsAdmin: userCtx.IsAdmin}

	reservations, err := h.reservations.BookFor(actor, req.UserID, req.BusID, date, req.SeatNumbers)
	if err != nil {
		h.safeLogBookingRejected(c, actor.UserID, req.BusID, req.ReservationDate, err.Error(), req.SeatNumbers)
		respondReservationError(c, err)
		return
	}

	h.safeLogBookingCreated(c, actor.UserID, req.UserID, req.BusID, req.ReservationDate, req.SeatNumbers)
	c.JSON(http.StatusCreated, gin.H{"reservations": reservations})
}

// CancelReservation force-cancels any reservation, recording the admin as the
// cancelling actor
func (h *AdminHandler) CancelReservation(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID := c.Param("id")
	actor := services.Actor{UserID: userCtx.UserID.String(), IsAdmin: true}

	reservation, err := h.reservations.Cancel(actor, reservationID)
	if err != nil {
		respondReservationError(c, err)
		return
	}

	h.safeLogCancellation(c, actor.UserID, reservationID, reservation.UserID, true)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation cancelled successfully",
		"reservation": reservation,
	})
}

// GetAllReservations lists reservations across all users, newest first
func (h *AdminHandler) GetAllReservations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reservations, err := h.reservationRepo.GetAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetBusReservations lists every reservation row for a bus and date,
// including cancelled history with the cancelling actor
func (h *AdminHandler) GetBusReservations(c *gin.Context) {
	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservations, err := h.reservationRepo.GetByBusAndDate(c.Param("id"), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bus_id":       c.Param("id"),
		"date":         date.Format(models.DateLayout),
		"reservations": reservations,
	})
}

// GetOccupancy returns admin-facing occupancy stats for a bus and date
func (h *AdminHandler) GetOccupancy(c *gin.Context) {
	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.occupancy.Occupancy(c.Param("id"), date, h.adminPrecision)
	if err != nil {
		respondReservationError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetFleetOccupancy returns occupancy stats for every active bus on a date
func (h *AdminHandler) GetFleetOccupancy(c *gin.Context) {
	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buses, err := h.busRepo.GetActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get buses"})
		return
	}

	stats := make([]models.OccupancyStats, 0, len(buses))
	for _, bus := range buses {
		busStats, err := h.occupancy.Occupancy(bus.ID, date, h.adminPrecision)
		if err != nil {
			respondReservationError(c, err)
			return
		}
		stats = append(stats, *busStats)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date.Format(models.DateLayout),
		"buses": stats,
	})
}
