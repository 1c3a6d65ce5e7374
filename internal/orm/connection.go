// Package orm implements an active-record data mapper over a relational
// store: typed entities with CRUD and aggregate helpers, a small query
// builder with named parameter binding, relationship descriptors, and a
// registry of factories used for seeding.
package orm

import (
	"context"
	"fmt"
)

// Supported SQL dialects
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Row is a single result row keyed by column name
type Row = map[string]interface{}

// Connection issues parameterized statements against the backing store.
//
// Statements use named parameters (@name); implementations bind them to the
// dialect's placeholders and never interpolate values into the SQL text.
type Connection interface {
	// Execute runs a statement and returns the number of affected rows
	Execute(ctx context.Context, query string, params map[string]interface{}) (int64, error)
	// Query runs a statement and returns its rows
	Query(ctx context.Context, query string, params map[string]interface{}) ([]Row, error)
	// LastInsertID returns the identifier assigned by the most recent insert
	LastInsertID(ctx context.Context) (int64, error)
	// Dialect reports the SQL dialect spoken by the store
	Dialect() string
}

// Inserter is implemented by connections that report the id assigned to a
// single INSERT statement. Entities prefer it over LastInsertID, which is
// shared by every caller of the connection.
type Inserter interface {
	Insert(ctx context.Context, query string, params map[string]interface{}) (int64, error)
}

// PrimaryKeyColumn returns the DDL fragment for an auto-assigned integer
// primary key named id.
func PrimaryKeyColumn(dialect string) string {
	switch dialect {
	case DialectPostgres:
		return "id BIGSERIAL PRIMARY KEY"
	case DialectMySQL:
		return "id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY"
	default:
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// TimestampType returns the column type used for date-time columns
func TimestampType(dialect string) string {
	switch dialect {
	case DialectMySQL:
		return "DATETIME"
	default:
		return "TIMESTAMP"
	}
}

// ForeignKeyType returns the column type matching PrimaryKeyColumn
func ForeignKeyType(dialect string) string {
	switch dialect {
	case DialectMySQL:
		return "BIGINT UNSIGNED"
	case DialectPostgres:
		return "BIGINT"
	default:
		return "INTEGER"
	}
}

// DropTableSQL returns a DROP TABLE IF EXISTS statement for a validated name
func DropTableSQL(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", table), nil
}
