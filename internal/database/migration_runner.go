package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/models"
	"github.com/ksred/ironforge/internal/orm"
	"github.com/ksred/ironforge/internal/utils"
)

// MigrationFunc performs one direction of a migration
type MigrationFunc func(ctx context.Context, conn orm.Connection, logger zerolog.Logger) error

// Migration is a named schema change. Up moves the schema forward and Down
// reverts it; a nil Down is a no-op.
type Migration struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

// Mode selects how Migrate treats each migration
type Mode string

// Supported modes
const (
	ModeRun      Mode = "run"
	ModeRollback Mode = "rollback"
	ModeRefresh  Mode = "refresh"
	ModeFresh    Mode = "fresh"
	ModeDown     Mode = "down"
	ModeReset    Mode = "reset"
	ModeStatus   Mode = "status"
)

// Modes lists every supported mode
func Modes() []Mode {
	return []Mode{ModeRun, ModeRollback, ModeRefresh, ModeFresh, ModeDown, ModeReset, ModeStatus}
}

// Valid reports whether m is a supported mode
func (m Mode) Valid() bool {
	for _, mode := range Modes() {
		if m == mode {
			return true
		}
	}
	return false
}

// Action describes what happened to one migration
type Action string

// Outcome actions
const (
	ActionApplied    Action = "applied"
	ActionRolledBack Action = "rolled_back"
	ActionRefreshed  Action = "refreshed"
	ActionSkipped    Action = "skipped"
	ActionFailed     Action = "failed"
	ActionIgnored    Action = "ignored"
)

// Outcome is the result of processing one migration
type Outcome struct {
	Migration string
	Action    Action
	Err       error
}

// Report collects the outcomes of a Migrate call
type Report struct {
	Mode     Mode
	Outcomes []Outcome
	History  []*models.MigrationHistory
}

// Err aggregates every failed migration, nil when all succeeded
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", o.Migration, o.Err))
		}
	}
	return result.ErrorOrNil()
}

// Count returns the number of outcomes with the given action
func (r *Report) Count(action Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// MigrationRunner applies registered migrations according to a mode and
// keeps the history store in step. Migrations are processed in ascending
// name order and independently: a failing migration is logged and
// reported, and the run continues with the next one.
type MigrationRunner struct {
	conn       orm.Connection
	history    *HistoryStore
	logger     zerolog.Logger
	migrations []Migration
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(conn orm.Connection, logger zerolog.Logger) *MigrationRunner {
	logger = utils.WithComponent(logger, "migration_runner")
	return &MigrationRunner{
		conn:    conn,
		history: NewHistoryStore(conn, logger),
		logger:  logger,
	}
}

// History returns the runner's history store
func (r *MigrationRunner) History() *HistoryStore {
	return r.history
}

// Register adds migrations to the runner
func (r *MigrationRunner) Register(migrations ...Migration) error {
	for _, m := range migrations {
		if m.Name == "" {
			return utils.RequiredFieldError("name")
		}
		if m.Up == nil {
			return utils.InvalidFieldError("up", fmt.Sprintf("migration %s has no forward operation", m.Name))
		}
		for _, existing := range r.migrations {
			if existing.Name == m.Name {
				return utils.WrapConflictError("migration", "name", m.Name)
			}
		}
		r.migrations = append(r.migrations, m)
	}
	return nil
}

// Migrations returns the registered migrations in processing order
func (r *MigrationRunner) Migrations() []Migration {
	sorted := append([]Migration(nil), r.migrations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Migrate applies mode to every registered migration. The returned error
// covers failures outside individual migrations, such as preparing the
// history store; per migration failures are in the report.
func (r *MigrationRunner) Migrate(ctx context.Context, mode Mode) (*Report, error) {
	report := &Report{Mode: mode}

	switch mode {
	case ModeStatus:
		history, err := r.Status(ctx)
		if err != nil {
			return report, err
		}
		report.History = history
		for _, h := range history {
			r.logger.Info().
				Str("migration", h.Migration).
				Time("executed_at", h.ExecutedAt).
				Msg("Applied migration")
		}
		return report, nil

	case ModeFresh, ModeDown:
		if err := r.history.Drop(ctx); err != nil {
			return report, err
		}

	case ModeRun, ModeRollback, ModeRefresh, ModeReset:
		if err := r.history.Ensure(ctx); err != nil {
			return report, err
		}
	}

	for _, m := range r.Migrations() {
		outcome := r.process(ctx, mode, m)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	r.logger.Info().
		Str("mode", string(mode)).
		Int("applied", report.Count(ActionApplied)).
		Int("rolled_back", report.Count(ActionRolledBack)).
		Int("refreshed", report.Count(ActionRefreshed)).
		Int("failed", report.Count(ActionFailed)).
		Msg("Migration run finished")

	return report, nil
}

// process applies mode to a single migration
func (r *MigrationRunner) process(ctx context.Context, mode Mode, m Migration) Outcome {
	log := r.logger.With().Str("migration", m.Name).Str("mode", string(mode)).Logger()

	if !mode.Valid() {
		log.Error().Msg("Unknown migration mode, ignoring")
		return Outcome{Migration: m.Name, Action: ActionIgnored}
	}

	action, err := r.transition(ctx, mode, m)
	if err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return Outcome{Migration: m.Name, Action: ActionFailed, Err: err}
	}

	switch action {
	case ActionSkipped:
		log.Debug().Msg("Nothing to do, skipping")
	default:
		log.Info().Str("action", string(action)).Msg("Migration completed successfully")
	}
	return Outcome{Migration: m.Name, Action: action}
}

// transition runs the steps mode prescribes for m given its current state
func (r *MigrationRunner) transition(ctx context.Context, mode Mode, m Migration) (Action, error) {
	switch mode {
	case ModeFresh:
		if err := r.invoke(ctx, m, "down", m.Down); err != nil {
			return "", err
		}
		if err := r.history.Ensure(ctx); err != nil {
			return "", err
		}
		if err := r.forward(ctx, m); err != nil {
			return "", err
		}
		return ActionApplied, nil

	case ModeDown:
		if err := r.invoke(ctx, m, "down", m.Down); err != nil {
			return "", err
		}
		return ActionRolledBack, nil
	}

	applied, err := r.history.IsApplied(ctx, m.Name)
	if err != nil {
		return "", err
	}

	switch mode {
	case ModeRun:
		if applied {
			return ActionSkipped, nil
		}
		if err := r.forward(ctx, m); err != nil {
			return "", err
		}
		return ActionApplied, nil

	case ModeRollback:
		if !applied {
			return ActionSkipped, nil
		}
		if err := r.backward(ctx, m); err != nil {
			return "", err
		}
		return ActionRolledBack, nil

	case ModeRefresh, ModeReset:
		if !applied {
			if err := r.forward(ctx, m); err != nil {
				return "", err
			}
			return ActionApplied, nil
		}
		if err := r.backward(ctx, m); err != nil {
			return "", err
		}
		if err := r.forward(ctx, m); err != nil {
			return "", err
		}
		return ActionRefreshed, nil
	}

	return ActionIgnored, nil
}

// forward runs Up and records the migration as applied
func (r *MigrationRunner) forward(ctx context.Context, m Migration) error {
	r.logger.Info().Str("migration", m.Name).Msg("Running migration")
	if err := r.invoke(ctx, m, "up", m.Up); err != nil {
		return err
	}
	return r.history.Record(ctx, m.Name)
}

// backward runs Down and removes the history record
func (r *MigrationRunner) backward(ctx context.Context, m Migration) error {
	r.logger.Info().Str("migration", m.Name).Msg("Rolling back migration")
	if err := r.invoke(ctx, m, "down", m.Down); err != nil {
		return err
	}
	return r.history.Remove(ctx, m.Name)
}

// invoke calls fn, turning a panic into an error
func (r *MigrationRunner) invoke(ctx context.Context, m Migration, direction string, fn MigrationFunc) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", direction, p)
		}
	}()
	if err := fn(ctx, r.conn, r.logger.With().Str("migration", m.Name).Logger()); err != nil {
		return fmt.Errorf("%s: %w", direction, err)
	}
	return nil
}

// Status returns the applied migrations ordered by execution time
func (r *MigrationRunner) Status(ctx context.Context) ([]*models.MigrationHistory, error) {
	if err := r.history.Ensure(ctx); err != nil {
		return nil, err
	}
	return r.history.List(ctx)
}

// GetPendingMigrations returns the migrations that haven't been applied yet
func (r *MigrationRunner) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	if err := r.history.Ensure(ctx); err != nil {
		return nil, err
	}
	applied, err := r.history.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var pending []Migration
	for _, m := range r.Migrations() {
		if !applied[m.Name] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}
