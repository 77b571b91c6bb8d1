package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-reservation-backend/internal/config"
	"github.com/smarttransit/bus-reservation-backend/internal/database"
	"github.com/smarttransit/bus-reservation-backend/internal/handlers"
	"github.com/smarttransit/bus-reservation-backend/internal/middleware"
	"github.com/smarttransit/bus-reservation-backend/internal/services"
	"github.com/smarttransit/bus-reservation-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SmartTransit Seat Reservation Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := database.EnsureSchema(db.DB); err != nil {
		logger.Fatalf("Failed to apply database schema: %v", err)
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	busRepository := database.NewBusRepository(db)
	reservationRepository := database.NewReservationRepository(db.DB)
	auditService := services.NewAuditService(db)

	reservationService := services.NewReservationService(
		busRepository,
		reservationRepository,
		cfg.Booking.LockWait,
		cfg.Booking.MaxSeatsPerRequest,
		logger,
	)
	occupancyService := services.NewOccupancyService(busRepository, reservationRepository)

	// Initialize handlers
	reservationHandler := handlers.NewReservationHandler(
		reservationService,
		occupancyService,
		reservationRepository,
		auditService,
		cfg.Occupancy.RiderPrecision,
	)
	adminHandler := handlers.NewAdminHandler(
		reservationService,
		occupancyService,
		reservationRepository,
		busRepository,
		auditService,
		cfg.Occupancy.AdminPrecision,
	)
	busHandler := handlers.NewBusHandler(busRepository)
	driverHandler := handlers.NewDriverHandler(busRepository, reservationRepository)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version})
	})

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService))
	{
		// Trip catalog (read-only)
		v1.GET("/buses", busHandler.GetBuses)
		v1.GET("/buses/:id", busHandler.GetBus)
		v1.GET("/buses/:id/occupied-seats", reservationHandler.GetOccupiedSeats)
		v1.GET("/buses/:id/occupancy", reservationHandler.GetOccupancy)

		// Rider reservations
		v1.POST("/reservations", reservationHandler.CreateReservation)
		v1.GET("/reservations", reservationHandler.GetMyReservations)
		v1.GET("/reservations/:id", reservationHandler.GetReservation)
		v1.DELETE("/reservations/:id", reservationHandler.CancelReservation)

		// Driver view
		driver := v1.Group("/driver")
		driver.Use(middleware.RequireRole("driver", middleware.RoleAdmin))
		{
			driver.GET("/buses", busHandler.GetMyDriverBuses)
			driver.GET("/buses/:id/reservations", driverHandler.GetBusReservations)
		}

		// Admin overrides and reporting
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/reservations", adminHandler.CreateReservation)
			admin.GET("/reservations", adminHandler.GetAllReservations)
			admin.DELETE("/reservations/:id", adminHandler.CancelReservation)
			admin.GET("/buses/:id/reservations", adminHandler.GetBusReservations)
			admin.GET("/buses/:id/occupancy", adminHandler.GetOccupancy)
			admin.GET("/occupancy", adminHandler.GetFleetOccupancy)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
