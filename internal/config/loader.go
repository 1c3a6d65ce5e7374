package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A local .env is applied before viper reads the environment; variables
	// already set in the process win.
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigName("config")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ironforge")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ironforge"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("IRONFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file doesn't exist, we have defaults and env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := parseDatabaseURL(v, dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Database.ApplyDriverDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadDotEnv loads the given env file when it exists
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ironforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "database.sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.debug", false)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("http.port", 8082)
	v.SetDefault("http.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("auth.api_key_hash", "")
}

// bindEnvVars binds the short environment variable names used by deployment
// scripts next to their prefixed forms.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.driver", "IRONFORGE_DATABASE_DRIVER", "DB_DRIVER")
	v.BindEnv("database.host", "IRONFORGE_DATABASE_HOST", "DB_HOST")
	v.BindEnv("database.port", "IRONFORGE_DATABASE_PORT", "DB_PORT")
	v.BindEnv("database.dbname", "IRONFORGE_DATABASE_DBNAME", "DB_NAME")
	v.BindEnv("database.user", "IRONFORGE_DATABASE_USER", "DB_USER")
	v.BindEnv("database.password", "IRONFORGE_DATABASE_PASSWORD", "DB_PASS")
	v.BindEnv("database.sqlite_path", "IRONFORGE_DATABASE_SQLITE_PATH", "DB_SQLITE_PATH")

	v.BindEnv("server.log_level", "IRONFORGE_SERVER_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("server.debug", "IRONFORGE_SERVER_DEBUG", "DEBUG")

	v.BindEnv("jwt.secret", "IRONFORGE_JWT_SECRET", "JWT_SECRET")
	v.BindEnv("auth.api_key_hash", "IRONFORGE_AUTH_API_KEY_HASH", "API_KEY_HASH")
}

// parseDatabaseURL splits a connection URL into individual database settings.
// Supported forms: postgres://, postgresql://, pgsql://, mysql:// and sqlite:.
func parseDatabaseURL(v *viper.Viper, dbURL string) error {
	u, err := url.Parse(dbURL)
	if err != nil {
		return err
	}

	driver := NormalizeDriver(u.Scheme)
	switch driver {
	case DriverSQLite:
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return fmt.Errorf("sqlite path not found in URL")
		}
		v.Set("database.driver", DriverSQLite)
		v.Set("database.sqlite_path", path)
		return nil
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return fmt.Errorf("database name not found in URL")
	}

	v.Set("database.driver", driver)
	v.Set("database.host", u.Hostname())
	if port := u.Port(); port != "" {
		v.Set("database.port", port)
	}
	v.Set("database.dbname", dbName)

	if u.User != nil {
		v.Set("database.user", u.User.Username())
		if password, ok := u.User.Password(); ok {
			v.Set("database.password", password)
		}
	}

	if sslMode := u.Query().Get("sslmode"); sslMode != "" {
		v.Set("database.sslmode", sslMode)
	}

	if u.Scheme == "postgres" || u.Scheme == "postgresql" {
		v.Set("database.url", dbURL)
	}

	return nil
}

// LoadConfigOrDefault loads configuration or returns default if loading fails
func LoadConfigOrDefault(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v. Using defaults.\n", err)
		return NewDefault()
	}
	return config
}
