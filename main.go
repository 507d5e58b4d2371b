package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/medpredict-be/internal/api"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/config"
	"github.com/isdelr/medpredict-be/internal/database"
	"github.com/isdelr/medpredict-be/internal/logger"
	"github.com/isdelr/medpredict-be/internal/predictor"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)

	if cfg.JWTSecret == "dev-secret-change-me" {
		log.Warn().Msg("JWT_SECRET is unset; using the insecure development default")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	if err := database.BootstrapAdmin(db, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	// Load classifier artifacts. Missing or malformed artifacts are fatal;
	// the service never starts in a degraded mode.
	classifier, err := predictor.Load(cfg.ModelPath, cfg.ScalerPath, cfg.DecisionThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load classifier artifacts; run the offline trainer first")
	}
	log.Info().
		Str("model", cfg.ModelPath).
		Str("scaler", cfg.ScalerPath).
		Float64("threshold", cfg.DecisionThreshold).
		Msg("Classifier artifacts loaded")

	// Set up sessions and services
	sessions := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour, cfg.AppEnv == "production")
	userService := services.NewUserService(db)
	reportService := services.NewReportService(db)

	// Set up router
	router := api.NewRouter(sessions, userService, reportService, classifier)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
