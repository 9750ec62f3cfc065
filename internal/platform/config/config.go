package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Addr              string
	TeamDir           string
	TeamPattern       string
	DefaultTeamFile   string
	SpritesDir        string
	SettleDelay       time.Duration
	SubscriberBacklog int
	LogLevel          string
	LogFormat         string
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
func FromEnv() Config {
	return Config{
		Addr:              GetEnv("ADDR", "127.0.0.1:3000"),
		TeamDir:           GetEnv("TEAM_DIR", "."),
		TeamPattern:       GetEnv("TEAM_PATTERN", "team"),
		DefaultTeamFile:   GetEnv("DEFAULT_TEAM_FILE", "team.txt"),
		SpritesDir:        GetEnv("SPRITES_DIR", "sprites"),
		SettleDelay:       GetEnvDuration("SETTLE_DELAY", 150*time.Millisecond),
		SubscriberBacklog: GetEnvInt("SUBSCRIBER_BACKLOG", 100),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
	}
}

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration is GetEnvInt for time.ParseDuration strings ("150ms").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
