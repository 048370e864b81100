// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Dataset source selectors.
const (
	DatasetSourceFile     = "file"
	DatasetSourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Dataset     DatasetConfig
	Locate      LocateConfig
	Events      EventsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration; only used when the dataset
// source is postgres.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// RedisConfig holds the persisted-location store configuration. An empty
// address disables persistence; the resolver then skips its persisted stage.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// DatasetConfig selects where the metadata and hotline datasets come from.
type DatasetConfig struct {
	Source        string
	MetadataPath  string
	HotlinesPath  string
	ImportOnStart bool
}

// LocateConfig holds location-resolution configuration
type LocateConfig struct {
	Timeout           time.Duration
	ReverseGeocodeURL string
	GeoIPPath         string
}

// EventsConfig holds event publishing configuration
type EventsConfig struct {
	Topic string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "lifeline"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Dataset: DatasetConfig{
			Source:        getEnv("DATASET_SOURCE", DatasetSourceFile),
			MetadataPath:  getEnv("DATASET_METADATA_PATH", "data/metadata.json"),
			HotlinesPath:  getEnv("DATASET_HOTLINES_PATH", "data/hotlines.json"),
			ImportOnStart: getEnvAsBool("DATASET_IMPORT_ON_START", false),
		},
		Locate: LocateConfig{
			Timeout:           getEnvAsDuration("LOCATE_TIMEOUT", 10*time.Second),
			ReverseGeocodeURL: getEnv("REVERSE_GEOCODE_URL", ""),
			GeoIPPath:         getEnv("GEOIP_DB_PATH", ""),
		},
		Events: EventsConfig{
			Topic: getEnv("EVENTS_TOPIC", "directory"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Dataset.Source {
	case DatasetSourceFile, DatasetSourcePostgres:
	default:
		return fmt.Errorf("unknown dataset source %q", config.Dataset.Source)
	}

	if config.Locate.Timeout <= 0 {
		return fmt.Errorf("locate timeout must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
