package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttransit/bus-reservation-backend/internal/services"
)

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondReservationError(c, err)
	return w
}

func TestRespondReservationError(t *testing.T) {
	t.Run("Bus Not Found", func(t *testing.T) {
		w := respond(t, services.ErrBusNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Reservation Not Found", func(t *testing.T) {
		w := respond(t, services.ErrReservationNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Not Authorized", func(t *testing.T) {
		w := respond(t, services.ErrNotAuthorized)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("No Seats Requested", func(t *testing.T) {
		w := respond(t, services.ErrNoSeatsRequested)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Completed Reservation", func(t *testing.T) {
		w := respond(t, services.ErrReservationCompleted)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Duplicate Seats Named", func(t *testing.T) {
		w := respond(t, &services.DuplicateSeatError{Seats: []string{"1A"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []interface{}{"1A"}, body["seats"])
	})

	t.Run("Invalid Seats Named", func(t *testing.T) {
		w := respond(t, &services.InvalidSeatError{Seats: []string{"1E", "A1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []interface{}{"1E", "A1"}, body["seats"])
	})

	t.Run("Out Of Range Seats Named", func(t *testing.T) {
		w := respond(t, &services.SeatOutOfRangeError{Seats: []string{"29A"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Too Many Seats", func(t *testing.T) {
		w := respond(t, &services.TooManySeatsError{Max: 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Seat Conflict Names Contested Seats", func(t *testing.T) {
		w := respond(t, &services.SeatConflictError{Seats: []string{"1B", "2C"}})
		assert.Equal(t, http.StatusConflict, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []interface{}{"1B", "2C"}, body["seats"])
	})

	t.Run("Busy Sets Retry-After", func(t *testing.T) {
		w := respond(t, services.ErrBusy)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})

	t.Run("Unknown Error Is Internal", func(t *testing.T) {
		w := respond(t, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom", "internal details are not leaked")
	})
}
