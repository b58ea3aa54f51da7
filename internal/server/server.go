package server

import (
	"fmt"
	"net/http"
	"time"

	"pharmacure/internal/config"
	"pharmacure/internal/metrics"
	custommiddleware "pharmacure/internal/middleware"
	"pharmacure/internal/repository"
	"pharmacure/internal/service"
	"pharmacure/internal/storage"
	"pharmacure/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  *storage.Store
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, store *storage.Store) *Server {
	// Create router
	router := chi.NewRouter()

	m := metrics.New()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.CORSOrigins, cfg.Server.Env == "development"))
	router.Use(m.Instrument)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Method(http.MethodGet, "/metrics", m.Handler())

	// Initialize repositories
	medicineRepo := repository.NewMedicineRepository(store)
	cartRepo := repository.NewCartRepository(store)
	doctorRepo := repository.NewDoctorRepository(store)
	appointmentRepo := repository.NewAppointmentRepository(store)
	userRepo := repository.NewUserRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	activityRepo := repository.NewActivityRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)

	// Initialize services
	catalogService := service.NewCatalogService(medicineRepo)
	cartService := service.NewCartService(cartRepo, medicineRepo)
	bookingService := service.NewBookingService(doctorRepo, appointmentRepo, activityRepo, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, activityRepo, cfg.JWT, cfg.Bootstrap, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	clinicHandler := transport.NewClinicHandler(bookingService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, bookingService, authService, activityRepo, logger)
	settingsHandler := transport.NewSettingsHandler(settingsRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	var redisClient *redis.Client
	if cfg.Redis.RateLimit {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 20,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger)

		// Limit only the credential endpoints.
		router.Group(func(r chi.Router) {
			r.Use(rateLimiter)
			userHandler.RegisterRoutes(r, authMiddleware)
		})
	} else {
		userHandler.RegisterRoutes(router, authMiddleware)
	}

	// Register routes
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	clinicHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	settingsHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
