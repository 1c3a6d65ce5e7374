package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/orm"
	"github.com/ksred/ironforge/internal/utils"
)

// Database manages the database connection and implements orm.Connection
// and orm.Inserter. The handle is opened on first use and Close clears it,
// so a later call opens a fresh one. It is safe for concurrent use.
type Database struct {
	config       config.Database
	logger       zerolog.Logger
	db           *gorm.DB
	lastInsertID int64
	mu           sync.RWMutex
}

var (
	_ orm.Connection = (*Database)(nil)
	_ orm.Inserter   = (*Database)(nil)
)

// NewDatabase creates a new Database instance
func NewDatabase(cfg config.Database, logger zerolog.Logger) *Database {
	cfg.Driver = config.NormalizeDriver(cfg.Driver)
	return &Database{
		config: cfg,
		logger: utils.WithComponent(logger, "database"),
	}
}

// Connect opens the connection pool. Failures are returned as
// *utils.ConnectionError; there are no retries.
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectLocked()
}

func (d *Database) connectLocked() error {
	if d.db != nil {
		return nil
	}

	dialector, err := d.dialector()
	if err != nil {
		return utils.WrapConnectionError(d.config.Driver, err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(d.getLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return utils.WrapConnectionError(d.config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return utils.WrapConnectionError(d.config.Driver, fmt.Errorf("failed to get underlying sql.DB: %w", err))
	}

	if d.isMemorySQLite() {
		// Every pooled connection would otherwise see its own empty database
		sqlDB.SetMaxOpenConns(1)
	} else {
		if d.config.MaxConnections > 0 {
			sqlDB.SetMaxOpenConns(d.config.MaxConnections)
		}
		if d.config.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(d.config.MaxIdleConns)
		}
	}
	if d.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(d.config.ConnMaxLifetime)
	}
	if d.config.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(d.config.ConnMaxIdleTime)
	}

	d.db = db
	d.logger.Info().
		Str("driver", d.config.Driver).
		Msg("Database connection established")
	return nil
}

// handle returns the open connection, opening it on first use
func (d *Database) handle() (*gorm.DB, error) {
	d.mu.RLock()
	db := d.db
	d.mu.RUnlock()
	if db != nil {
		return db, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.connectLocked(); err != nil {
		return nil, err
	}
	return d.db, nil
}

// Dialect reports the SQL dialect of the configured driver
func (d *Database) Dialect() string {
	switch d.config.Driver {
	case config.DriverMySQL:
		return orm.DialectMySQL
	case config.DriverPostgres:
		return orm.DialectPostgres
	default:
		return orm.DialectSQLite
	}
}

// bind renders a statement with named parameters into the dialect's
// placeholder syntax and the ordered argument list.
func (d *Database) bind(ctx context.Context, db *gorm.DB, query string, params map[string]interface{}) (string, []interface{}, error) {
	tx := db.WithContext(ctx).Session(&gorm.Session{DryRun: true})
	if len(params) > 0 {
		tx = tx.Exec(query, params)
	} else {
		tx = tx.Exec(query)
	}
	if tx.Error != nil {
		return "", nil, tx.Error
	}
	return tx.Statement.SQL.String(), tx.Statement.Vars, nil
}

// Execute runs a statement and returns the number of affected rows
func (d *Database) Execute(ctx context.Context, query string, params map[string]interface{}) (int64, error) {
	result, err := d.exec(ctx, "execute", query, params)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// Insert runs an INSERT and returns the id assigned to that statement's row.
// Postgres has no driver level last insert id, so the statement is run with
// RETURNING id.
func (d *Database) Insert(ctx context.Context, query string, params map[string]interface{}) (int64, error) {
	if d.Dialect() == orm.DialectPostgres {
		rows, err := d.Query(ctx, query+" RETURNING id", params)
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			return 0, utils.WrapDatabaseError("insert", errors.New("insert returned no id"))
		}
		id := cast.ToInt64(rows[0]["id"])
		d.setLastInsertID(id)
		return id, nil
	}

	result, err := d.exec(ctx, "insert", query, params)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, utils.WrapDatabaseError("insert", err)
	}
	return id, nil
}

func (d *Database) exec(ctx context.Context, operation, query string, params map[string]interface{}) (sql.Result, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, utils.WrapDatabaseError(operation, err)
	}

	statement, vars, err := d.bind(ctx, db, query, params)
	if err != nil {
		return nil, utils.WrapDatabaseError(operation, err)
	}

	d.logger.Debug().Str("sql", statement).Int("params", len(vars)).Msg("Executing statement")

	result, err := sqlDB.ExecContext(ctx, statement, vars...)
	if err != nil {
		return nil, utils.WrapDatabaseError(operation, err)
	}

	// Drivers without last insert id support report an error here
	if id, err := result.LastInsertId(); err == nil && id > 0 {
		d.setLastInsertID(id)
	}
	return result, nil
}

func (d *Database) setLastInsertID(id int64) {
	d.mu.Lock()
	d.lastInsertID = id
	d.mu.Unlock()
}

// Query runs a statement and returns its rows keyed by column name. Byte
// slices are returned as strings.
func (d *Database) Query(ctx context.Context, query string, params map[string]interface{}) ([]orm.Row, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, utils.WrapDatabaseError("query", err)
	}

	statement, vars, err := d.bind(ctx, db, query, params)
	if err != nil {
		return nil, utils.WrapDatabaseError("query", err)
	}

	d.logger.Debug().Str("sql", statement).Int("params", len(vars)).Msg("Running query")

	rows, err := sqlDB.QueryContext(ctx, statement, vars...)
	if err != nil {
		return nil, utils.WrapDatabaseError("query", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, utils.WrapDatabaseError("query", err)
	}
	return result, nil
}

func scanRows(rows *sql.Rows) ([]orm.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []orm.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(orm.Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// LastInsertID returns the id assigned by the most recent insert on any
// goroutine. Concurrent callers should use Insert instead.
func (d *Database) LastInsertID(ctx context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastInsertID, nil
}

// Health checks the database connection health
func (d *Database) Health(ctx context.Context) error {
	db, err := d.handle()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection and clears the handle
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	d.db = nil
	d.lastInsertID = 0

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// DB returns the underlying gorm.DB instance, nil when not connected
func (d *Database) DB() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// SetDB sets the underlying gorm.DB instance (for testing)
func (d *Database) SetDB(db *gorm.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db = db
}

// dialector selects the gorm dialector for the configured driver
func (d *Database) dialector() (gorm.Dialector, error) {
	switch d.config.Driver {
	case config.DriverPostgres:
		dsn, err := d.postgresDSN()
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(d.mysqlDSN()), nil
	case config.DriverSQLite:
		path := d.config.SQLitePath
		if path == "" {
			path = "database.sqlite"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", d.config.Driver)
	}
}

// postgresDSN builds the key/value DSN, or converts the configured URL.
// The result is checked with pgx so malformed settings fail before dialing.
func (d *Database) postgresDSN() (string, error) {
	dsn := d.buildDSN()
	if d.config.URL != "" {
		converted, err := pq.ParseURL(d.config.URL)
		if err != nil {
			return "", fmt.Errorf("invalid database url: %w", err)
		}
		dsn = converted
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("invalid postgres dsn: %w", err)
	}
	return dsn, nil
}

// buildDSN constructs the PostgreSQL key/value DSN from config
func (d *Database) buildDSN() string {
	sslMode := d.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + dsnValue(d.config.Host),
		fmt.Sprintf("port=%d", d.config.Port),
		"user=" + dsnValue(d.config.User),
	}
	if d.config.Password != "" {
		parts = append(parts, "password="+dsnValue(d.config.Password))
	}
	parts = append(parts,
		"dbname="+dsnValue(d.config.DBName),
		"sslmode="+sslMode,
		"TimeZone=UTC",
	)
	return strings.Join(parts, " ")
}

// dsnValue quotes a key/value DSN value when needed
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}

// mysqlDSN builds the go-sql-driver DSN from config
func (d *Database) mysqlDSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.config.Host, d.config.Port)
	cfg.User = d.config.User
	cfg.Passwd = d.config.Password
	cfg.DBName = d.config.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func (d *Database) isMemorySQLite() bool {
	if d.config.Driver != config.DriverSQLite {
		return false
	}
	path := d.config.SQLitePath
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// getLogLevel returns the GORM log level from config
func (d *Database) getLogLevel() logger.LogLevel {
	switch d.config.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	default:
		return logger.Error
	}
}
