package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/api"
	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"

	// Import swagger docs
	_ "github.com/ksred/ironforge/docs"
)

func main() {
	var (
		configPath     string
		skipMigrations bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&skipMigrations, "skip-migrations", false, "Skip applying pending migrations at startup")
	flag.Parse()

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info().
		Str("version", "1.0.0").
		Int("port", cfg.HTTP.Port).
		Str("driver", cfg.Database.Driver).
		Bool("api_key_auth", cfg.Auth.APIKeyHash != "").
		Msg("Starting ironforge admin API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	migrationService, err := services.NewDefaultMigrationService(db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create migration service")
	}

	if !skipMigrations {
		logger.Info().Msg("Applying pending migrations...")
		result, err := migrationService.Migrate(ctx, string(database.ModeRun))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		if !result.Success {
			logger.Warn().Strs("errors", result.Errors).Msg("Some migrations failed")
		}
		logger.Info().Int("applied", result.Summary["applied"]).Msg("Migrations completed")
	} else {
		logger.Warn().Msg("Skipping migrations as requested")
	}

	seedService, err := services.NewSeedService(db, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create seed service")
	}

	server, err := api.NewServer(cfg, db, migrationService, seedService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTP.Port); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("HTTP server error")
	}

	logger.Info().Msg("Starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown HTTP server")
	}

	logger.Info().Msg("Shutdown complete")
}

// loadConfiguration loads configuration from file or environment
func loadConfiguration(configPath string) (*config.Config, error) {
	cfg := config.LoadConfigOrDefault(configPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging logs to stderr unless a log file is configured
func setupLogging(cfg *config.Config) zerolog.Logger {
	logFile := cfg.Server.LogFile
	if logFile == "" {
		logFile = os.Getenv("LOG_FILE")
	}

	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     cfg.Server.Debug,
		CallerInfo: cfg.Server.Debug,
		LogFile:    logFile,
	}

	utils.SetupGlobalLogger(logConfig)
	return utils.NewLogger(logConfig)
}

// connectToDatabase establishes the database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	logger.Info().Msg("Connecting to database")

	db := database.NewDatabase(cfg.Database, logger)
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().Msg("Database connection established")
	return db, nil
}
