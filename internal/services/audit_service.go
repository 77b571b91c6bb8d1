package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/utils"
)

// AuditService records reservation-domain events for later review. Audit
// writes are best-effort: handlers log failures but never fail the request
// over them.
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents a reservation event to be logged
type AuditEvent struct {
	ActorID    *string                // nil for unauthenticated events
	Action     string                 // e.g. "reservation_create", "reservation_cancel"
	EntityType string                 // type of entity affected
	EntityID   *string                // id of the affected entity
	IPAddress  string                 // client IP address
	UserAgent  string                 // client user agent
	Details    map[string]interface{} // additional details stored as JSONB
}

// LogBookingCreated logs a successful booking with its seat tokens
func (s *AuditService) LogBookingCreated(actorID, targetUserID, busID, date string, seats []string, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"target_user_id": targetUserID,
		"bus_id":         busID,
		"date":           date,
		"seats":          seats,
		"device_info":    utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		ActorID:    &actorID,
		Action:     "reservation_create",
		EntityType: "reservation",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogBookingRejected logs a booking intent that failed validation or conflicted
func (s *AuditService) LogBookingRejected(actorID, busID, date, reason string, seats []string, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"bus_id":      busID,
		"date":        date,
		"seats":       seats,
		"reason":      reason,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		ActorID:    &actorID,
		Action:     "reservation_rejected",
		EntityType: "reservation",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogCancellation logs a reservation cancellation, including admin overrides
func (s *AuditService) LogCancellation(actorID, reservationID, ownerID string, admin bool, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"owner_id":       ownerID,
		"admin_override": admin,
		"device_info":    utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		ActorID:    &actorID,
		Action:     "reservation_cancel",
		EntityType: "reservation",
		EntityID:   &reservationID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent persists an audit event
func (s *AuditService) logEvent(event AuditEvent) error {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO reservation_audit_logs (
			id, actor_id, action, entity_type, entity_id,
			ip_address, user_agent, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.db.Exec(query,
		uuid.New().String(), event.ActorID, event.Action, event.EntityType,
		event.EntityID, event.IPAddress, event.UserAgent, detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
