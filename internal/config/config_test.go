package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	networkDB := func(driver string) Database {
		return Database{
			Driver:         driver,
			Host:           "localhost",
			Port:           DefaultPort(driver),
			User:           "forge",
			DBName:         "forge",
			MaxConnections: 10,
			MaxIdleConns:   2,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Valid default configuration",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "Valid postgres configuration",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverPostgres)
			},
			wantErr: false,
		},
		{
			name: "pgsql alias is accepted",
			mutate: func(c *Config) {
				c.Database = networkDB("pgsql")
			},
			wantErr: false,
		},
		{
			name: "Valid mysql configuration",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverMySQL)
			},
			wantErr: false,
		},
		{
			name: "Postgres URL skips field checks",
			mutate: func(c *Config) {
				c.Database = Database{
					Driver:         DriverPostgres,
					URL:            "postgres://u:p@db:5432/app",
					MaxConnections: 5,
				}
			},
			wantErr: false,
		},
		{
			name: "Missing database host",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverPostgres)
				c.Database.Host = ""
			},
			wantErr: true,
			errMsg:  "database host is required",
		},
		{
			name: "Missing database user",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverMySQL)
				c.Database.User = ""
			},
			wantErr: true,
			errMsg:  "database user is required",
		},
		{
			name: "Missing database name",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverPostgres)
				c.Database.DBName = ""
			},
			wantErr: true,
			errMsg:  "database name is required",
		},
		{
			name: "Invalid database port",
			mutate: func(c *Config) {
				c.Database = networkDB(DriverPostgres)
				c.Database.Port = 70000
			},
			wantErr: true,
			errMsg:  "database port must be between 1 and 65535",
		},
		{
			name: "Missing sqlite path",
			mutate: func(c *Config) {
				c.Database.SQLitePath = ""
			},
			wantErr: true,
			errMsg:  "sqlite path is required",
		},
		{
			name: "Unsupported driver",
			mutate: func(c *Config) {
				c.Database.Driver = "oracle"
			},
			wantErr: true,
			errMsg:  "unsupported database driver: oracle",
		},
		{
			name: "Missing driver",
			mutate: func(c *Config) {
				c.Database.Driver = ""
			},
			wantErr: true,
			errMsg:  "database driver is required",
		},
		{
			name: "Idle connections exceed max",
			mutate: func(c *Config) {
				c.Database.MaxConnections = 2
				c.Database.MaxIdleConns = 3
			},
			wantErr: true,
			errMsg:  "max idle connections cannot exceed max connections",
		},
		{
			name: "Zero max connections",
			mutate: func(c *Config) {
				c.Database.MaxConnections = 0
			},
			wantErr: true,
			errMsg:  "max connections must be greater than 0",
		},
		{
			name: "Invalid log level",
			mutate: func(c *Config) {
				c.Server.LogLevel = "verbose"
			},
			wantErr: true,
			errMsg:  "invalid log level: verbose",
		},
		{
			name: "Invalid database log level",
			mutate: func(c *Config) {
				c.Database.LogLevel = "chatty"
			},
			wantErr: true,
			errMsg:  "invalid database log level: chatty",
		},
		{
			name: "Empty JWT secret",
			mutate: func(c *Config) {
				c.JWT.Secret = ""
			},
			wantErr: true,
			errMsg:  "JWT secret cannot be empty",
		},
		{
			name: "Invalid HTTP port",
			mutate: func(c *Config) {
				c.HTTP.Port = 0
			},
			wantErr: true,
			errMsg:  "HTTP port must be between 1 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "database.sqlite", cfg.Database.SQLitePath)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 8082, cfg.HTTP.Port)
	assert.Empty(t, cfg.Auth.APIKeyHash)
	assert.NoError(t, cfg.Validate())
}

func TestNormalizeDriver(t *testing.T) {
	tests := map[string]string{
		"pgsql":      DriverPostgres,
		"postgresql": DriverPostgres,
		"Postgres":   DriverPostgres,
		"mysql":      DriverMySQL,
		"sqlite3":    DriverSQLite,
		" sqlite ":   DriverSQLite,
		"oracle":     "oracle",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, NormalizeDriver(input))
		})
	}
}

func TestDatabase_ApplyDriverDefaults(t *testing.T) {
	t.Run("mysql gets port and host", func(t *testing.T) {
		db := Database{Driver: "mysql"}
		db.ApplyDriverDefaults()

		assert.Equal(t, 3306, db.Port)
		assert.Equal(t, "localhost", db.Host)
	})

	t.Run("pgsql alias is normalized", func(t *testing.T) {
		db := Database{Driver: "pgsql", Host: "db"}
		db.ApplyDriverDefaults()

		assert.Equal(t, DriverPostgres, db.Driver)
		assert.Equal(t, 5432, db.Port)
		assert.Equal(t, "db", db.Host)
	})

	t.Run("empty driver falls back to sqlite", func(t *testing.T) {
		db := Database{}
		db.ApplyDriverDefaults()

		assert.Equal(t, DriverSQLite, db.Driver)
		assert.Equal(t, "database.sqlite", db.SQLitePath)
		assert.Zero(t, db.Port)
	})

	t.Run("explicit port is kept", func(t *testing.T) {
		db := Database{Driver: "postgres", Port: 6543}
		db.ApplyDriverDefaults()

		assert.Equal(t, 6543, db.Port)
	})
}
