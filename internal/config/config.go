package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	// DriverMySQL is accepted by the migrate command only.
	DriverMySQL = "mysql"
)

// Config holds the runtime configuration of the server and migration tool.
type Config struct {
	AppAddr           string        `envconfig:"APP_ADDR" default:"localhost:3000"`
	AppDebug          bool          `envconfig:"APP_DEBUG" default:"false"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"10s"`
	AppShutdownGrace  time.Duration `envconfig:"APP_SHUTDOWN_GRACE" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	// DatabasePath is the single-file store handed over by the desktop shell.
	DatabasePath   string `envconfig:"DATABASE_PATH" default:"./sqlite.db"`
	SkipDatabase   bool   `envconfig:"SKIP_DATABASE" default:"false"`
	SkipMigrations bool   `envconfig:"SKIP_MIGRATIONS" default:"false"`

	DBHost     string `envconfig:"DB_HOST"`
	// DBPort falls back to the driver's standard port when unset.
	DBPort     string `envconfig:"DB_PORT"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBTimezone string `envconfig:"DB_TIMEZONE" default:"UTC"`

	SearchFirstMatchOnly  bool `envconfig:"SEARCH_FIRST_MATCH_ONLY" default:"true"`
	SearchExactNationalID bool `envconfig:"SEARCH_EXACT_NATIONAL_ID" default:"false"`
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads .env files (when present) and then the process environment
// without validating, so callers can apply overrides first.
func Read() (*Config, error) {
	// .env files are optional outside development
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.AppRequestTimeout <= 0 {
		return errors.New("APP_REQUEST_TIMEOUT must be positive")
	}
	if c.SkipDatabase {
		return nil
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres, DriverMySQL:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// Port returns DBPort, or the standard port of the configured driver.
func (c *Config) Port() string {
	if c.DBPort != "" {
		return c.DBPort
	}
	if strings.EqualFold(c.DBDriver, DriverMySQL) {
		return "3306"
	}
	return "5432"
}

// PostgresDSN renders the connection string in the key=value form.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.Port(), c.DBSSLMode, c.DBTimezone,
	)
}

// MySQLDSN renders the go-sql-driver DSN for the same connection settings.
func (c *Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.Port()
	mc.DBName = c.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}
