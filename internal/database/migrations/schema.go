package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/orm"
)

// column renders one column definition for a dialect
type column func(dialect string) string

func id() column {
	return orm.PrimaryKeyColumn
}

func varchar(name string, size int, constraints string) column {
	return func(string) string {
		return strings.TrimSpace(fmt.Sprintf("%s VARCHAR(%d) %s", name, size, constraints))
	}
}

func text(name string) column {
	return func(string) string {
		return name + " TEXT"
	}
}

func bigint(name string, constraints string) column {
	return func(string) string {
		return strings.TrimSpace(name + " BIGINT " + constraints)
	}
}

func foreignID(name string, constraints string) column {
	return func(dialect string) string {
		return strings.TrimSpace(name + " " + orm.ForeignKeyType(dialect) + " " + constraints)
	}
}

func timestamp(name string) column {
	return func(dialect string) string {
		return name + " " + orm.TimestampType(dialect) + " NULL"
	}
}

func primaryKey(columns ...string) column {
	return func(string) string {
		return "PRIMARY KEY (" + strings.Join(columns, ", ") + ")"
	}
}

// createTable returns a migration step creating table with columns
func createTable(table string, columns ...column) database.MigrationFunc {
	return func(ctx context.Context, conn orm.Connection, logger zerolog.Logger) error {
		if err := orm.ValidateIdentifier(table); err != nil {
			return err
		}
		defs := make([]string, len(columns))
		for i, c := range columns {
			defs[i] = "\t" + c(conn.Dialect())
		}
		ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", table, strings.Join(defs, ",\n"))
		if _, err := conn.Execute(ctx, ddl, nil); err != nil {
			return err
		}
		logger.Info().Str("table", table).Msg("Created table")
		return nil
	}
}

// createIndex returns a migration step indexing table(columns)
func createIndex(name, table string, columns ...string) database.MigrationFunc {
	return func(ctx context.Context, conn orm.Connection, logger zerolog.Logger) error {
		ddl := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", name, table, strings.Join(columns, ", "))
		if _, err := conn.Execute(ctx, ddl, nil); err != nil {
			return err
		}
		logger.Debug().Str("index", name).Msg("Created index")
		return nil
	}
}

// dropTable returns a migration step dropping table if it exists
func dropTable(table string) database.MigrationFunc {
	return func(ctx context.Context, conn orm.Connection, logger zerolog.Logger) error {
		ddl, err := orm.DropTableSQL(table)
		if err != nil {
			return err
		}
		if _, err := conn.Execute(ctx, ddl, nil); err != nil {
			return err
		}
		logger.Info().Str("table", table).Msg("Dropped table")
		return nil
	}
}

// steps runs fns in order, stopping at the first error
func steps(fns ...database.MigrationFunc) database.MigrationFunc {
	return func(ctx context.Context, conn orm.Connection, logger zerolog.Logger) error {
		for _, fn := range fns {
			if err := fn(ctx, conn, logger); err != nil {
				return err
			}
		}
		return nil
	}
}
