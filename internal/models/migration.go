package models

import (
	"time"
)

// MigrationHistoryTable stores one row per applied migration
const MigrationHistoryTable = "migrations_history"

// MigrationHistory records a migration that has been applied
type MigrationHistory struct {
	ID         int64     `db:"id" json:"id"`
	Migration  string    `db:"migration" json:"migration"`
	ExecutedAt time.Time `db:"executed_at" json:"executed_at"`
}

// TableName ensures consistent table naming
func (MigrationHistory) TableName() string {
	return MigrationHistoryTable
}

// Fillable lists the columns accepted from external data
func (MigrationHistory) Fillable() []string {
	return []string{"migration", "executed_at"}
}
