package web

import (
	"fmt"

	"github.com/valdor-terrains/internal/config"
)

// Config holds the HTTP server settings, read from the environment.
type Config struct {
	Host string
	Port int

	MunicipalDataPath  string
	GovernmentDataPath string
	ValidationCache    string

	// DatabaseEnabled controls whether the Postgres validation store is
	// used; without it decisions live in the local cache only.
	DatabaseEnabled bool
}

// ConfigFromEnv builds the server configuration from environment variables,
// with defaults suitable for local development.
func ConfigFromEnv() Config {
	return Config{
		Host:               config.GetEnv("HTTP_HOST", "0.0.0.0"),
		Port:               config.GetEnvInt("HTTP_PORT", 8080),
		MunicipalDataPath:  config.GetEnv("MUNICIPAL_DATA", "data/municipal-data.json"),
		GovernmentDataPath: config.GetEnv("GOVERNMENT_DATA", "data/government-data.json"),
		ValidationCache:    config.GetEnv("VALIDATION_CACHE", "data/validations.json"),
		DatabaseEnabled:    config.GetEnvBool("DATABASE_ENABLED", false),
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
