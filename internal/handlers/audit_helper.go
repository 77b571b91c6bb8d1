package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
)

// logAuditError logs audit failures without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		log.Printf("AUDIT ERROR [%s]: %v", operation, err)
	}
}

func (h *ReservationHandler) safeLogBookingCreated(c *gin.Context, actorID, targetUserID, busID, date string, seats []string) {
	err := h.auditService.LogBookingCreated(actorID, targetUserID, busID, date, seats, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogBookingCreated", err)
}

func (h *ReservationHandler) safeLogBookingRejected(c *gin.Context, actorID, busID, date, reason string, seats []string) {
	err := h.auditService.LogBookingRejected(actorID, busID, date, reason, seats, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogBookingRejected", err)
}

func (h *ReservationHandler) safeLogCancellation(c *gin.Context, actorID, reservationID, ownerID string, admin bool) {
	err := h.auditService.LogCancellation(actorID, reservationID, ownerID, admin, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogCancellation", err)
}

func (h *AdminHandler) safeLogBookingCreated(c *gin.Context, actorID, targetUserID, busID, date string, seats []string) {
	err := h.auditService.LogBookingCreated(actorID, targetUserID, busID, date, seats, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogBookingCreated", err)
}

func (h *AdminHandler) safeLogBookingRejected(c *gin.Context, actorID, busID, date, reason string, seats []string) {
	err := h.auditService.LogBookingRejected(actorID, busID, date, reason, seats, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogBookingRejected", err)
}

func (h *AdminHandler) safeLogCancellation(c *gin.Context, actorID, reservationID, ownerID string, admin bool) {
	err := h.auditService.LogCancellation(actorID, reservationID, ownerID, admin, c.ClientIP(), c.Request.UserAgent())
	logAuditError("LogCancellation", err)
}
