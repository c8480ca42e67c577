// Package config loads the process-wide configuration (its Configuration
// list) in a structured way, following the teacher's one-struct-per-concern
// layout with a package-level Global for components that cannot be handed
// the config explicitly (e.g. CLI helpers invoked deep in cobra commands).
package config

import (
	"path/filepath"
	"strings"
)

// Config holds every section of process configuration.
type Config struct {
	App AppConfig
	Database DatabaseConfig
	Auth AuthConfig
	Ingestion IngestionConfig
	Report ReportConfig
	Whatsapp WhatsappConfig
	Cache CacheConfig
}

type AppConfig struct {
	Port string
	Debug bool
	Environment string
	BasePath string
	TrustedProxies []string
	CorsAllowedOrigins []string
	TimeZone string
}

// DatabaseConfig selects and configures the storage backend. Presence
// of DATABASE_URL selects the networked (Postgres) backend; otherwise
// the embedded single-file (SQLite) backend at DBPath is used.
type DatabaseConfig struct {
	DatabaseURL string // presence selects the networked backend
	DBPath string // local backend file path
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiresIn string // e.g. "24h", parsed with time.ParseDuration
	DefaultAgency int64 // DEFAULT_AGENCY_ID, 0 means unset
}

type IngestionConfig struct {
	GroupIDFilter string // GROUP_ID: when set, only this external group id is accepted
	SendConfirmations bool
	WorkerPoolSize int
	WorkerQueueSize int
}

type ReportConfig struct {
	Enabled bool
	Time string // HH:MM local
}

type WhatsappConfig struct {
	ClientID string // isolates the session directory
}

type CacheConfig struct {
	ValkeyEnabled bool
	ValkeyAddress string
	ValkeyPassword string
	ValkeyDB int
	ValkeyPrefix string
}

// Global is populated once at startup by Load and read by components that
// are not wired through explicit dependency injection.
var Global *Config

// Load reads configuration from the environment, already populated by
// godotenv in cmd/root.go's init, applying defaults for anything unset.
func Load() (*Config, error) {
	var cors []string
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		cors = strings.Split(v, ",")
	} else {
		cors = []string{"*"}
	}

	var trustedProxies []string
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		trustedProxies = strings.Split(v, ",")
	}

	dbPath := getEnv("DB_PATH", filepath.Join("storages", "deligate.db"))

	cfg := &Config{
		App: AppConfig{
			Port: getEnv("APP_PORT", "3000"),
			Debug: getEnvBool("APP_DEBUG", false),
			Environment: getEnv("APP_ENV", "development"),
			BasePath: getEnv("APP_BASE_PATH", ""),
			TrustedProxies: trustedProxies,
			CorsAllowedOrigins: cors,
			TimeZone: getEnv("TIME_ZONE", "Africa/Douala"),
		},
		Database: DatabaseConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
			DBPath: dbPath,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "changeme_please_change_me_in_prod"),
			JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
			DefaultAgency: getEnvInt64("DEFAULT_AGENCY_ID", 0),
		},
		Ingestion: IngestionConfig{
			GroupIDFilter: getEnv("GROUP_ID", ""),
			SendConfirmations: getEnvBool("SEND_CONFIRMATIONS", true),
			WorkerPoolSize: getEnvInt("MESSAGE_WORKER_POOL_SIZE", 8),
			WorkerQueueSize: getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 250),
		},
		Report: ReportConfig{
			Enabled: getEnvBool("REPORT_ENABLED", true),
			Time: getEnv("REPORT_TIME", "20:00"),
		},
		Whatsapp: WhatsappConfig{
			ClientID: getEnv("CLIENT_ID", "default"),
		},
		Cache: CacheConfig{
			ValkeyEnabled: getEnvBool("VALKEY_ENABLED", false),
			ValkeyAddress: getEnv("VALKEY_ADDRESS", "localhost:6379"),
			ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
			ValkeyDB: getEnvInt("VALKEY_DB", 0),
			ValkeyPrefix: getEnv("VALKEY_KEY_PREFIX", "deligate:"),
		},
	}

	Global = cfg
	return cfg, nil
}

// UsesNetworkedBackend reports whether the Postgres backend is selected.
func (c *Config) UsesNetworkedBackend() bool {
	return c.Database.DatabaseURL != ""
}
