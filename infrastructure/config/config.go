package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the gridstock server.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Log         LogConfig
	Auth        AuthConfig
	Warehouse   WarehouseConfig
	Reports     ReportsConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path          string
	MigrationsDir string
	BusyTimeout   time.Duration
	ReadConns     int
}

type LogConfig struct {
	Level    string
	Encoding string
}

type AuthConfig struct {
	SessionTTL         time.Duration
	LoginRatePerMinute int
	LoginBurst         int
}

// WarehouseConfig sizes the default warehouse created on first start.
type WarehouseConfig struct {
	Name    string
	Rows    int
	Columns int
}

type ReportsConfig struct {
	AutoArchive bool
	Interval    time.Duration
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Addr:            getEnv("APP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 2)) * time.Second,
		},
		Database: DatabaseConfig{
			Path:          getEnv("SQLITE_PATH", "gridstock.db"),
			MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
			BusyTimeout:   time.Duration(getEnvAsInt("SQLITE_BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
			ReadConns:     getEnvAsInt("SQLITE_READ_CONNS", 8),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			SessionTTL:         time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 12)) * time.Hour,
			LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:         getEnvAsInt("LOGIN_BURST", 5),
		},
		Warehouse: WarehouseConfig{
			Name:    getEnv("WAREHOUSE_NAME", "Main Warehouse"),
			Rows:    getEnvAsInt("WAREHOUSE_ROWS", 6),
			Columns: getEnvAsInt("WAREHOUSE_COLUMNS", 15),
		},
		Reports: ReportsConfig{
			AutoArchive: getEnvAsBool("AUTO_ARCHIVE", true),
			Interval:    time.Duration(getEnvAsInt("AUTO_ARCHIVE_INTERVAL_MINUTES", 60)) * time.Minute,
		},
	}

	if cfg.IsDevelopment() && os.Getenv("LOG_ENCODING") == "" {
		cfg.Log.Encoding = "console"
	}

	return cfg, cfg.Validate()
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("SQLITE_PATH is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.Auth.LoginRatePerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return fmt.Errorf("login rate limit must be positive")
	}
	if c.Warehouse.Rows < 1 || c.Warehouse.Columns < 1 {
		return fmt.Errorf("warehouse rows and columns must be at least 1")
	}
	if c.Reports.AutoArchive && c.Reports.Interval <= 0 {
		return fmt.Errorf("AUTO_ARCHIVE_INTERVAL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
