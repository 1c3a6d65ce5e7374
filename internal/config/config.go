package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the main application configuration
type Config struct {
	Database Database `json:"database" mapstructure:"database"`
	Server   Server   `json:"server" mapstructure:"server"`
	JWT      JWT      `json:"jwt" mapstructure:"jwt"`
	HTTP     HTTP     `json:"http" mapstructure:"http"`
	Auth     Auth     `json:"auth" mapstructure:"auth"`
}

// Database represents database configuration
type Database struct {
	Driver          string        `json:"driver" mapstructure:"driver"`
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	DBName          string        `json:"dbname" mapstructure:"dbname"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	SQLitePath      string        `json:"sqlite_path" mapstructure:"sqlite_path"`
	URL             string        `json:"url" mapstructure:"url"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	LogLevel        string        `json:"log_level" mapstructure:"log_level"`
}

// Server represents server configuration
type Server struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	LogFile  string `json:"log_file" mapstructure:"log_file"`
	Debug    bool   `json:"debug" mapstructure:"debug"`
}

// JWT represents JWT configuration
type JWT struct {
	Secret string        `json:"secret" mapstructure:"secret"`
	TTL    time.Duration `json:"ttl" mapstructure:"ttl"`
}

// HTTP represents HTTP server configuration
type HTTP struct {
	Port         int      `json:"port" mapstructure:"port"`
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`
}

// Auth holds the credentials accepted by the admin API
type Auth struct {
	// APIKeyHash is the bcrypt hash of the admin API key, empty disables key auth
	APIKeyHash string `json:"api_key_hash" mapstructure:"api_key_hash"`
}

// NewDefault returns a Config instance with default values
func NewDefault() *Config {
	return &Config{
		Database: Database{
			Driver:          DriverSQLite,
			SQLitePath:      "database.sqlite",
			SSLMode:         "disable",
			MaxConnections:  25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 1 * time.Minute,
			LogLevel:        "warn",
		},
		Server: Server{
			LogLevel: "info",
			Debug:    false,
		},
		JWT: JWT{
			Secret: "change-me-in-production",
			TTL:    24 * time.Hour,
		},
		HTTP: HTTP{
			Port:         8082,
			AllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
	}
}

// NormalizeDriver maps driver aliases onto the supported driver names
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgsql", "postgresql", "postgres":
		return DriverPostgres
	case "sqlite3", "sqlite":
		return DriverSQLite
	case "mysql":
		return DriverMySQL
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// DefaultPort returns the conventional port for a network driver
func DefaultPort(driver string) int {
	switch NormalizeDriver(driver) {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	default:
		return 0
	}
}

// ApplyDriverDefaults fills values that depend on the selected driver
func (d *Database) ApplyDriverDefaults() {
	d.Driver = NormalizeDriver(d.Driver)
	if d.Driver == "" {
		d.Driver = DriverSQLite
	}
	if d.Port == 0 {
		d.Port = DefaultPort(d.Driver)
	}
	if d.Driver == DriverSQLite && d.SQLitePath == "" {
		d.SQLitePath = "database.sqlite"
	}
	if d.Driver != DriverSQLite && d.Host == "" && d.URL == "" {
		d.Host = "localhost"
	}
}

// Validate checks the driver specific database settings
func (d *Database) Validate() error {
	switch NormalizeDriver(d.Driver) {
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DriverPostgres, DriverMySQL:
		if d.URL != "" {
			break
		}
		if d.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if d.Port <= 0 || d.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535")
		}
		if d.User == "" {
			return fmt.Errorf("database user is required")
		}
		if d.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", d.Driver)
	}

	if d.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if d.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}
	if d.MaxIdleConns > d.MaxConnections {
		return fmt.Errorf("max idle connections cannot exceed max connections")
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if c.Database.LogLevel != "" && c.Database.LogLevel != "silent" && !validLogLevels[c.Database.LogLevel] {
		return fmt.Errorf("invalid database log level: %s", c.Database.LogLevel)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	return nil
}
