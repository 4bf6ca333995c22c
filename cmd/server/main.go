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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/handlers"
	"github.com/staynest/booking-backend/internal/metrics"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/events"
	"github.com/staynest/booking-backend/pkg/jwt"
	"github.com/staynest/booking-backend/pkg/payments"
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

	logger.Info("Starting StayNest booking backend")
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

	rdb := database.NewRedisClient(cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	roomRepository := database.NewRoomRepository(db.DB)
	hotelRepository := database.NewHotelRepository(db.DB, roomRepository)
	bookingRepository := database.NewBookingRepository(db.DB)
	auditRepository := database.NewBookingAuditRepository(db.DB, logger)

	var draftStore services.DraftStore
	if rdb != nil {
		draftStore = database.NewRedisDraftStore(rdb)
	} else {
		draftStore = database.NewMemoryDraftStore()
	}

	// Booking events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		logger.WithField("queue", cfg.RabbitMQ.Queue).Info("Publishing booking events to RabbitMQ")
	} else {
		logger.Info("RABBITMQ_URL not set, booking events are dropped")
	}
	defer publisher.Close()

	// Payment provider
	var provider payments.Provider
	if cfg.Payment.StripeSecretKey != "" {
		provider = payments.NewStripeProvider(payments.StripeConfig{
			SecretKey:  cfg.Payment.StripeSecretKey,
			MaxRetries: 2,
		}, logger)
	} else {
		if cfg.Server.Environment == "production" {
			logger.Fatal("STRIPE_SECRET_KEY is required in production")
		}
		provider = payments.NewDevProvider()
		logger.Warn("STRIPE_SECRET_KEY not set, using the in-memory development payment provider")
	}
	logger.WithField("provider", provider.GetName()).Info("Payment provider ready")

	// Services
	logger.Info("Initializing services...")
	metrics.Register()

	jwtService := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	auditService := services.NewAuditService(auditRepository, logger)
	calc := services.NewAvailabilityCalculator(services.OverlapPolicy(cfg.Booking.OverlapPolicy))

	intentService := services.NewBookingIntentService(
		bookingRepository,
		roomRepository,
		hotelRepository,
		draftStore,
		provider,
		calc,
		publisher,
		auditService,
		services.BookingIntentConfig{
			DefaultCurrency:    cfg.Payment.DefaultCurrency,
			StrictConfirmation: cfg.Booking.StrictConfirmation(),
			DraftTTL:           cfg.Booking.DraftTTL,
		},
		logger,
	)
	confirmationService := services.NewBookingConfirmationService(
		bookingRepository,
		provider,
		calc,
		publisher,
		auditService,
		services.BookingConfirmationConfig{
			Mode:               cfg.Booking.ConfirmationMode,
			VerifyWithProvider: cfg.Payment.VerifyOnConfirm,
		},
		logger,
	)
	bookingService := services.NewBookingService(
		bookingRepository,
		roomRepository,
		hotelRepository,
		calc,
		publisher,
		auditService,
		cfg.Booking.EnforceOwnerDelete,
		cfg.Payment.DefaultCurrency,
		logger,
	)
	hotelService := services.NewHotelService(hotelRepository, roomRepository, logger)
	draftService := services.NewDraftService(draftStore, roomRepository, cfg.Booking.DraftTTL, cfg.Payment.DefaultCurrency, logger)

	logger.WithFields(logrus.Fields{
		"overlap_policy":       calc.Policy(),
		"confirmation_mode":    cfg.Booking.ConfirmationMode,
		"enforce_owner_delete": cfg.Booking.EnforceOwnerDelete,
	}).Info("Booking rules loaded")

	var cronService *services.CronService
	if cfg.Booking.PurgeUnpaidAfter > 0 {
		cronService = services.NewCronService(bookingRepository, cfg.Booking.PurgeUnpaidAfter, cfg.Booking.PurgeSchedule, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
	}

	// Handlers
	var webhookHandler *handlers.WebhookHandler
	if cfg.Payment.WebhookSecret != "" {
		webhookHandler = handlers.NewWebhookHandler(confirmationService, auditService, cfg.Payment.WebhookSecret, logger)
	} else {
		logger.Info("STRIPE_WEBHOOK_SECRET not set, webhook route disabled")
	}
	healthHandler := handlers.NewHealthHandler(db, rdb, version)

	// Router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid trusted proxies: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(metrics.Middleware())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		// credentials cannot be combined with a wildcard origin
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	// Identify the caller first so the limiter can key by user
	v1.Use(middleware.OptionalAuth(jwtService))
	v1.Use(middleware.NewRateLimiter(cfg.RateLimit, rdb, logger).Middleware())
	handlers.Routes{
		Bookings: handlers.NewBookingHandler(intentService, confirmationService, bookingService, logger),
		Hotels:   handlers.NewHotelHandler(hotelService, logger),
		Drafts:   handlers.NewDraftHandler(draftService, logger),
		Webhooks: webhookHandler,
	}.Register(v1, middleware.AuthMiddleware(jwtService, logger))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cronService != nil {
		cronService.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}

		// Add user context if available
		if user, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = user.UserID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		// Log based on status code
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
