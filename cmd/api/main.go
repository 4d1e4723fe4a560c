package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/docbook/docbook-api/internal/config"
	adminHandler "github.com/docbook/docbook-api/internal/handler/admin"
	doctorHandler "github.com/docbook/docbook-api/internal/handler/doctor"
	healthHandler "github.com/docbook/docbook-api/internal/handler/health"
	userHandler "github.com/docbook/docbook-api/internal/handler/user"
	"github.com/docbook/docbook-api/internal/middleware"
	"github.com/docbook/docbook-api/internal/repository/postgres"
	"github.com/docbook/docbook-api/internal/router"
	authService "github.com/docbook/docbook-api/internal/service/auth"
	bookingService "github.com/docbook/docbook-api/internal/service/booking"
	doctorService "github.com/docbook/docbook-api/internal/service/doctor"
	specialityService "github.com/docbook/docbook-api/internal/service/speciality"
	userService "github.com/docbook/docbook-api/internal/service/user"
	"github.com/docbook/docbook-api/pkg/auth"
	"github.com/docbook/docbook-api/pkg/security"
)

func main() {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.MigrationsDir != "" {
		if err := postgres.Migrate(cfg.Database, cfg.Database.MigrationsDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg.JWT.Secret)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	authSvc := authService.NewService(userRepo, doctorRepo, tokens, hasher, cfg.Admin.Email, cfg.Admin.Password)
	userSvc := userService.NewService(userRepo)
	doctorSvc := doctorService.NewService(doctorRepo, hasher)
	bookingSvc := bookingService.NewService(appointmentRepo, doctorRepo, userRepo)
	specialitySvc := specialityService.NewService(doctorRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	userH := userHandler.NewHandler(authSvc, userSvc, bookingSvc)
	doctorH := doctorHandler.NewHandler(authSvc, doctorSvc, bookingSvc, specialitySvc)
	adminH := adminHandler.NewHandler(authSvc, doctorSvc, bookingSvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		userH,
		doctorH,
		adminH,
		healthH,
		router.RouterConfig{
			RateLimit:  rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:  cfg.Server.RateLimitBurst,
			Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
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
