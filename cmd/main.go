package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/mcp"
	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"
)

const version = "v0.1.0"

func main() {
	var (
		configPath string
		migrate    bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	flag.Parse()

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info().Str("version", version).Msg("Starting ironforge MCP server")

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

	if migrate {
		result, err := migrationService.Migrate(ctx, string(database.ModeRun))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Info().
			Int("applied", result.Summary["applied"]).
			Bool("success", result.Success).
			Msg("Startup migrations completed")
	}

	seedService, err := services.NewSeedService(db, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create seed service")
	}

	mcpServer, err := mcp.NewServer(migrationService, seedService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MCP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info().Msg("Starting MCP server on stdio")
		if err := mcpServer.Serve(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("MCP server error")
	}

	logger.Info().Msg("Starting graceful shutdown")
	cancel()
	logger.Info().Msg("Shutdown complete")
}

// loadConfiguration loads the application configuration
func loadConfiguration(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		cfg = config.NewDefault()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging configures the application logger. Stdout carries JSON-RPC,
// so logs go to a file.
func setupLogging(cfg *config.Config) zerolog.Logger {
	logFile := cfg.Server.LogFile
	if logFile == "" {
		logFile = os.Getenv("LOG_FILE")
	}
	if logFile == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		logFile = filepath.Join(homeDir, ".config", "ironforge", "logs", "ironforge.log")
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
	dbConfig := cfg.Database
	// gorm must stay quiet so it does not interfere with JSON-RPC
	dbConfig.LogLevel = "silent"

	db := database.NewDatabase(dbConfig, logger)
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().
		Str("driver", dbConfig.Driver).
		Str("database", dbConfig.DBName).
		Msg("Successfully connected to database")

	return db, nil
}
