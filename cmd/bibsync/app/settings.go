package app

import (
	"os"
)

// Settings holds the global command line flags and the logging
// environment. Sync configuration lives in internal/config.
type Settings struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile overrides the config file search.
	ConfigFile string
	// Token overrides the token from the environment.
	Token string

	// Logging configuration. LogLevel is the --log-level flag; EnvLogLevel
	// is LOG_LEVEL and ranks below -v and -q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadSettings reads the logging environment.
func LoadSettings() *Settings {
	return &Settings{
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		NoColor:     os.Getenv("NO_COLOR") != "",
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
