package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Geocoding GeocodingConfig
	Weather   WeatherConfig
	Limits    LimitsConfig
	Seeder    SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// MaxExportRows bounds the number of records a single export may contain.
const MaxExportRows = 500

// DBConfig holds database configuration
type DBConfig struct {
	Type          DBType
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationsDir string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "weather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	LogLevel string
}

// GeocodingConfig points at the geocoding provider
type GeocodingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// WeatherConfig points at the forecast and air-quality providers
type WeatherConfig struct {
	ForecastURL   string
	AirQualityURL string
	Timeout       time.Duration
}

// LimitsConfig bounds list and export sizes
type LimitsConfig struct {
	List   int
	Export int
}

// SeederConfig holds settings for history import
type SeederConfig struct {
	File      string
	BatchSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:          dbType,
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "weather"),
			Password:      getEnv("DB_PASSWORD", "weather_password"),
			Name:          getEnv("DB_NAME", "weather"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Server: ServerConfig{
			Port:     getEnv("APP_PORT", "8080"),
			LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Geocoding: GeocodingConfig{
			BaseURL: strings.TrimRight(getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1"), "/"),
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Weather: WeatherConfig{
			ForecastURL:   getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			AirQualityURL: getEnv("AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
			Timeout:       getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Limits: LimitsConfig{
			List:   getEnvAsInt("LIST_LIMIT", 100),
			Export: getEnvAsInt("EXPORT_LIMIT", MaxExportRows),
		},
		Seeder: SeederConfig{
			File:      getEnv("SEEDER_FILE", ""),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 50),
		},
	}

	if config.Limits.List <= 0 {
		config.Limits.List = 100
	}
	if config.Limits.Export <= 0 || config.Limits.Export > MaxExportRows {
		config.Limits.Export = MaxExportRows
	}

	return config, nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
