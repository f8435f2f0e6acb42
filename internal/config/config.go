// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for databases and cache snapshots (always absolute)
	Port     int
	DevMode  bool
	LogLevel string

	// League host (MFL)
	LeagueID     string
	LeagueYear   string
	MFLBaseURL   string
	MFLUserAgent string

	// Rankings host (FantasyPros)
	FantasyProsAPIKey  string
	FantasyProsBaseURL string

	// Sleeper enrichment (no auth required)
	SleeperBaseURL string

	// Auction settings
	TotalBudget int
	NumTeams    int
	RosterSize  int

	// Background jobs (cron specs, empty disables)
	SyncSchedule   string
	BackupSchedule string

	// S3-compatible backup target (backups disabled when credentials absent)
	BackupBucket    string
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("GRIDIRON_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GRIDIRON_PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LeagueID:     getEnv("MFL_LEAGUE_ID", ""),
		LeagueYear:   getEnv("MFL_YEAR", strconv.Itoa(time.Now().Year())),
		MFLBaseURL:   getEnv("MFL_BASE_URL", "https://api.myfantasyleague.com"),
		MFLUserAgent: getEnv("MFL_CLIENT_ID", "MFLCLIENTAGENT"),

		FantasyProsAPIKey:  getEnv("FANTASYPROS_API_KEY", ""),
		FantasyProsBaseURL: getEnv("FANTASYPROS_BASE_URL", "https://api.fantasypros.com/public/v2/json"),

		SleeperBaseURL: getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1"),

		TotalBudget: getEnvAsInt("AUCTION_BUDGET", 500),
		NumTeams:    getEnvAsInt("LEAGUE_TEAMS", 12),
		RosterSize:  getEnvAsInt("ROSTER_SIZE", 26),

		SyncSchedule:   getEnv("SYNC_SCHEDULE", "0 0 5 * * *"),   // 5 AM daily
		BackupSchedule: getEnv("BACKUP_SCHEDULE", "0 0 6 * * *"), // after the sync

		BackupBucket:    getEnv("BACKUP_BUCKET", ""),
		BackupEndpoint:  getEnv("BACKUP_ENDPOINT", ""),
		BackupAccessKey: getEnv("BACKUP_ACCESS_KEY_ID", ""),
		BackupSecretKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// League ID is required only for sync operations; the server can start
	// without it and serve previously synced data.
	if c.NumTeams <= 0 || c.RosterSize <= 0 || c.TotalBudget <= 0 {
		return fmt.Errorf("auction settings must be positive (teams=%d roster=%d budget=%d)",
			c.NumTeams, c.RosterSize, c.TotalBudget)
	}
	return nil
}

// CurrentYear returns the configured league year as an int, falling back to
// the wall-clock year when the value is unparseable.
func (c *Config) CurrentYear() int {
	if year, err := strconv.Atoi(c.LeagueYear); err == nil {
		return year
	}
	return time.Now().Year()
}

// BackupEnabled reports whether S3 backup credentials are configured.
func (c *Config) BackupEnabled() bool {
	return c.BackupBucket != "" && c.BackupAccessKey != "" && c.BackupSecretKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
