package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/database/migrations"
	"github.com/ksred/ironforge/internal/orm"
	"github.com/ksred/ironforge/internal/utils"
)

// MigrationService exposes the migration runner to the outer surfaces
type MigrationService struct {
	runner *database.MigrationRunner
	logger zerolog.Logger
}

// NewMigrationService creates a service around an existing runner
func NewMigrationService(runner *database.MigrationRunner, logger zerolog.Logger) *MigrationService {
	return &MigrationService{
		runner: runner,
		logger: utils.WithComponent(logger, "migration_service"),
	}
}

// NewDefaultMigrationService creates a runner on conn with every migration
// from the migrations package registered
func NewDefaultMigrationService(conn orm.Connection, logger zerolog.Logger) (*MigrationService, error) {
	runner := database.NewMigrationRunner(conn, logger)
	if err := runner.Register(migrations.GetMigrations()...); err != nil {
		return nil, fmt.Errorf("failed to register migrations: %w", err)
	}
	return NewMigrationService(runner, logger), nil
}

// ParseMode normalises a user supplied mode and rejects unknown ones
func ParseMode(mode string) (database.Mode, error) {
	m := database.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if m == "" {
		return database.ModeRun, nil
	}
	if !m.Valid() {
		return "", utils.InvalidFieldError("mode", fmt.Sprintf("unsupported migration mode '%s'", mode))
	}
	return m, nil
}

// Migrate runs every registered migration in the given mode
func (s *MigrationService) Migrate(ctx context.Context, mode string) (*MigrationResult, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("mode", string(m)).Msg("Migration requested")

	report, err := s.runner.Migrate(ctx, m)
	if err != nil {
		return nil, err
	}
	return newMigrationResult(report), nil
}

// Status returns the applied migrations in execution order
func (s *MigrationService) Status(ctx context.Context) (*MigrationResult, error) {
	return s.Migrate(ctx, string(database.ModeStatus))
}

// Pending returns the names of migrations not applied yet
func (s *MigrationService) Pending(ctx context.Context) ([]string, error) {
	pending, err := s.runner.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pending))
	for i, m := range pending {
		names[i] = m.Name
	}
	return names, nil
}

func newMigrationResult(report *database.Report) *MigrationResult {
	result := &MigrationResult{
		Mode:    string(report.Mode),
		Success: true,
		History: report.History,
	}

	if len(report.Outcomes) > 0 {
		result.Summary = make(map[string]int)
	}
	for _, o := range report.Outcomes {
		outcome := MigrationOutcome{Migration: o.Migration, Action: string(o.Action)}
		if o.Err != nil {
			outcome.Error = o.Err.Error()
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", o.Migration, o.Err))
		}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Summary[string(o.Action)]++
	}
	return result
}
