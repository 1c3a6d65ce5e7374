package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/ksred/ironforge/internal/models"
	"github.com/ksred/ironforge/internal/orm"
)

// HistoryStore persists which migrations have been applied. It is the only
// source of truth for a migration's state.
type HistoryStore struct {
	conn   orm.Connection
	entity *orm.Entity[models.MigrationHistory]
	logger zerolog.Logger
}

// NewHistoryStore creates a history store on conn
func NewHistoryStore(conn orm.Connection, logger zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		conn:   conn,
		entity: orm.NewEntity[models.MigrationHistory](conn, logger),
		logger: logger,
	}
}

// Table returns the history table name
func (h *HistoryStore) Table() string {
	return h.entity.Table()
}

// Ensure creates the history table when it does not exist
func (h *HistoryStore) Ensure(ctx context.Context) error {
	dialect := h.conn.Dialect()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s,
	migration VARCHAR(255) NOT NULL UNIQUE,
	executed_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, h.Table(), orm.PrimaryKeyColumn(dialect), orm.TimestampType(dialect))

	if _, err := h.conn.Execute(ctx, ddl, nil); err != nil {
		return fmt.Errorf("failed to create %s table: %w", h.Table(), err)
	}
	return nil
}

// Drop removes the history table and everything recorded in it
func (h *HistoryStore) Drop(ctx context.Context) error {
	ddl, err := orm.DropTableSQL(h.Table())
	if err != nil {
		return err
	}
	if _, err := h.conn.Execute(ctx, ddl, nil); err != nil {
		return fmt.Errorf("failed to drop %s table: %w", h.Table(), err)
	}
	h.logger.Warn().Str("table", h.Table()).Msg("Migration history dropped")
	return nil
}

// IsApplied reports whether a history record exists for name
func (h *HistoryStore) IsApplied(ctx context.Context, name string) (bool, error) {
	return h.entity.Exists(ctx, orm.Attributes{"migration": name})
}

// Record marks name as applied now
func (h *HistoryStore) Record(ctx context.Context, name string) error {
	_, err := h.entity.Create(ctx, orm.Attributes{
		"migration":   name,
		"executed_at": time.Now().UTC(),
	})
	return err
}

// Remove deletes the history record of name
func (h *HistoryStore) Remove(ctx context.Context, name string) error {
	_, err := h.entity.DeleteWhere(ctx, orm.Attributes{"migration": name})
	return err
}

// List returns every history record ordered by execution time
func (h *HistoryStore) List(ctx context.Context) ([]*models.MigrationHistory, error) {
	qb := h.entity.Query().
		OrderBy("executed_at", "ASC").
		OrderBy("id", "ASC")
	return h.entity.Get(ctx, qb)
}

// Applied returns the set of applied migration names
func (h *HistoryStore) Applied(ctx context.Context) (map[string]bool, error) {
	names, err := h.entity.Pluck(ctx, "migration")
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(names))
	for _, name := range names {
		applied[cast.ToString(name)] = true
	}
	return applied, nil
}
