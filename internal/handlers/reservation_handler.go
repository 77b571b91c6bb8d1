package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
	"github.com/smarttransit/bus-reservation-backend/internal/models"
	"github.com/smarttransit/bus-reservation-backend/internal/services"
)

// ReservationHandler handles rider reservation operations
type ReservationHandler struct {
	reservations    *services.ReservationService
	occupancy       *services.OccupancyService
	reservationRepo *database.ReservationRepository
	auditService    *services.AuditService
	riderPrecision  int
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(
	reservations *services.ReservationService,
	occupancy *services.OccupancyService,
	reservationRepo *database.ReservationRepository,
	auditService *services.AuditService,
	riderPrecision int,
) *ReservationHandler {
	return &ReservationHandler{
		reservations:    reservations,
		occupancy:       occupancy,
		reservationRepo: reservationRepo,
		auditService:    auditService,
		riderPrecision:  riderPrecision,
	}
}

// CreateReservation books one or more seats for the authenticated rider
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReservationRequest
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

	reservations, err := h.reservations.Book(actor, req.BusID, date, req.SeatNumbers)
	if err != nil {
		h.safeLogBookingRejected(c, actor.UserID, req.BusID, req.ReservationDate, err.Error(), req.SeatNumbers)
		respondReservationError(c, err)
		return
	}

	h.safeLogBookingCreated(c, actor.UserID, actor.UserID, req.BusID, req.ReservationDate, req.SeatNumbers)
	c.JSON(http.StatusCreated, gin.H{"reservations": reservations})
}

// GetMyReservations lists the authenticated rider's reservations
func (h *ReservationHandler) GetMyReservations(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservations, err := h.reservationRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// GetReservation retrieves a single reservation, owner or admin only
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservation, err := h.reservationRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reservation"})
		return
	}

	if reservation.UserID != userCtx.UserID.String() && !userCtx.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this reservation"})
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CancelReservation cancels a reservation owned by the authenticated rider.
// Cancelling an already-cancelled reservation succeeds without changes.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID := c.Param("id")
	actor := services.Actor{UserID: userCtx.UserID.String(), IsAdmin: userCtx.IsAdmin}

	reservation, err := h.reservations.Cancel(actor, reservationID)
	if err != nil {
		respondReservationError(c, err)
		return
	}

	h.safeLogCancellation(c, actor.UserID, reservationID, reservation.UserID, userCtx.IsAdmin)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation cancelled successfully",
		"reservation": reservation,
	})
}

// GetOccupiedSeats returns the occupancy snapshot for a bus and date
func (h *ReservationHandler) GetOccupiedSeats(c *gin.Context) {
	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seats, err := h.reservations.OccupiedSeats(c.Param("id"), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get occupied seats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bus_id":         c.Param("id"),
		"date":           date.Format(models.DateLayout),
		"occupied_seats": seats,
	})
}

// GetOccupancy returns rider-facing occupancy stats for a bus and date
func (h *ReservationHandler) GetOccupancy(c *gin.Context) {
	date, err := models.ParseReservationDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.occupancy.Occupancy(c.Param("id"), date, h.riderPrecision)
	if err != nil {
		respondReservationError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// respondReservationError translates engine failures into HTTP responses.
// Validation and conflict payloads name the offending seat tokens so clients
// can build precise messages.
func respondReservationError(c *gin.Context, err error) {
	var duplicate *services.DuplicateSeatError
	var invalid *services.InvalidSeatError
	var outOfRange *services.SeatOutOfRangeError
	var tooMany *services.TooManySeatsError
	var conflict *services.SeatConflictError

	switch {
	case errors.Is(err, services.ErrBusNotFound),
		errors.Is(err, services.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoSeatsRequested),
		errors.Is(err, services.ErrReservationCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicate.Error(), "seats": duplicate.Seats})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "seats": invalid.Seats})
	case errors.As(err, &outOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": outOfRange.Error(), "seats": outOfRange.Seats})
	case errors.As(err, &tooMany):
		c.JSON(http.StatusBadRequest, gin.H{"error": tooMany.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "seats": conflict.Seats})
	case errors.Is(err, services.ErrBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
