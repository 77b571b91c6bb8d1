package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
)

// mockDB adapts a sqlmock connection to the database.DB interface
type mockDB struct {
	db *sql.DB
}

func (m *mockDB) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDB) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDB) Close() error {
	return m.db.Close()
}

func (m *mockDB) Ping() error {
	return m.db.Ping()
}

var testBusColumns = []string{
	"id", "bus_number", "route_id", "driver_id", "bus_type", "total_seats",
	"departure_time", "arrival_time", "is_active", "created_at",
}

var testReservationColumns = []string{
	"id", "user_id", "bus_id", "seat_number", "reservation_date",
	"status", "cancelled_by", "created_at", "updated_at",
}

// contextRouter builds a router with the user context pre-resolved, the way
// the auth middleware would leave it
func contextRouter(userCtx middleware.UserContext, method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, userCtx)
	})
	router.Handle(method, path, handler)
	return router
}

func newDriverHandlerWithMock(t *testing.T) (*DriverHandler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	busRepo := database.NewBusRepository(&mockDB{db: db})
	reservationRepo := database.NewReservationRepository(sqlx.NewDb(db, "sqlmock"))
	return NewDriverHandler(busRepo, reservationRepo), mock
}

func TestDriverGetBusReservations(t *testing.T) {
	busID := uuid.New().String()
	driverID := uuid.New()
	date, _ := time.Parse("2006-01-02", "2026-03-15")
	now := time.Now()

	busRow := func(driver interface{}) *sqlmock.Rows {
		return sqlmock.NewRows(testBusColumns).
			AddRow(busID, "NB-1234", uuid.New().String(), driver, "28-seat", 28, "06:30", "09:15", true, now)
	}

	t.Run("Assigned Driver Sees Manifest", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: driverID, Roles: []string{"driver"}},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		mock.ExpectQuery(`SELECT (.+) FROM buses WHERE id`).
			WithArgs(busID).
			WillReturnRows(busRow(driverID.String()))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE bus_id`).
			WithArgs(busID, date).
			WillReturnRows(sqlmock.NewRows(testReservationColumns).
				AddRow(uuid.New().String(), uuid.New().String(), busID, "1A", date, "confirmed", nil, now, now).
				AddRow(uuid.New().String(), uuid.New().String(), busID, "2B", date, "cancelled", uuid.New().String(), now, now))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations?date=2026-03-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1A")
		assert.Contains(t, w.Body.String(), "2B")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unassigned Driver Forbidden", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: uuid.New(), Roles: []string{"driver"}},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		mock.ExpectQuery(`SELECT (.+) FROM buses WHERE id`).
			WithArgs(busID).
			WillReturnRows(busRow(driverID.String()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations?date=2026-03-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Bus Without Driver Forbidden", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: driverID, Roles: []string{"driver"}},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		mock.ExpectQuery(`SELECT (.+) FROM buses WHERE id`).
			WithArgs(busID).
			WillReturnRows(busRow(nil))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations?date=2026-03-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin Allowed Without Assignment", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: uuid.New(), Roles: []string{"admin"}, IsAdmin: true},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		mock.ExpectQuery(`SELECT (.+) FROM buses WHERE id`).
			WithArgs(busID).
			WillReturnRows(busRow(driverID.String()))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE bus_id`).
			WithArgs(busID, date).
			WillReturnRows(sqlmock.NewRows(testReservationColumns))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations?date=2026-03-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Bus", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: driverID, Roles: []string{"driver"}},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		mock.ExpectQuery(`SELECT (.+) FROM buses WHERE id`).
			WithArgs(busID).
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations?date=2026-03-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Date", func(t *testing.T) {
		handler, mock := newDriverHandlerWithMock(t)
		router := contextRouter(middleware.UserContext{UserID: driverID, Roles: []string{"driver"}},
			http.MethodGet, "/driver/buses/:id/reservations", handler.GetBusReservations)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/driver/buses/"+busID+"/reservations", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
