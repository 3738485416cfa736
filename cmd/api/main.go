package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/amante/clinic-booking-api/config"
	"github.com/amante/clinic-booking-api/internal/handler"
	authHandler "github.com/amante/clinic-booking-api/internal/handler/auth"
	bookingHandler "github.com/amante/clinic-booking-api/internal/handler/booking"
	providerHandler "github.com/amante/clinic-booking-api/internal/handler/provider"
	scheduleHandler "github.com/amante/clinic-booking-api/internal/handler/schedule"
	"github.com/amante/clinic-booking-api/internal/middleware"
	"github.com/amante/clinic-booking-api/internal/repository/postgres"
	"github.com/amante/clinic-booking-api/internal/router"
	authService "github.com/amante/clinic-booking-api/internal/service/auth"
	bookingService "github.com/amante/clinic-booking-api/internal/service/booking"
	notificationService "github.com/amante/clinic-booking-api/internal/service/notification"
	providerService "github.com/amante/clinic-booking-api/internal/service/provider"
	scheduleService "github.com/amante/clinic-booking-api/internal/service/schedule"
	"github.com/amante/clinic-booking-api/pkg/auth"
	"github.com/amante/clinic-booking-api/pkg/lock"
	"github.com/amante/clinic-booking-api/pkg/logger"
	messagingRedis "github.com/amante/clinic-booking-api/pkg/messaging/redis"
	"github.com/amante/clinic-booking-api/pkg/metrics"
	"github.com/amante/clinic-booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := messagingRedis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	// Shared infrastructure
	m := metrics.NewMetrics("clinic_booking")
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	redisBroker := broker.(*messagingRedis.RedisBroker)
	locker := lock.NewRedisLocker(redisBroker.Client(), cfg.Redis.LockTTL)

	// Services
	notifySvc := notificationService.NewService(broker, userRepo, scheduleRepo, m, appLogger)
	authSvc := authService.NewService(userRepo, hasher, jwtSvc, appLogger)
	providerSvc := providerService.NewService(userRepo)
	scheduleSvc := scheduleService.NewService(scheduleRepo, bookingRepo, userRepo, m, appLogger)
	bookingSvc := bookingService.NewService(bookingRepo, userRepo, locker, notifySvc, m, appLogger)

	// HTTP layer
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.NewRouter(
		authMiddleware,
		handler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		providerHandler.NewHandler(providerSvc),
		scheduleHandler.NewHandler(scheduleSvc),
		bookingHandler.NewHandler(bookingSvc),
		router.Config{
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			CORS:             corsConfig(cfg),
		},
	)
	r.Setup()

	readTimeout, writeTimeout := router.ServerTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		cors.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		cors.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return cors
}
