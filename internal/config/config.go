// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret is the HS256 signing key used to validate bearer tokens.
	// Tokens are minted by a separate auth service; this API only verifies. Required.
	JWTSecret string

	// GeocoderToken is the access token for the geocoding provider. Required.
	GeocoderToken string

	// GeocoderBaseURL is the geocoding API endpoint.
	// Defaults to the Mapbox places API; override for tests or a proxy.
	GeocoderBaseURL string

	// CloudName, UploadAPIKey, and UploadAPISecret identify the image
	// hosting account uploads are signed for. All three required.
	CloudName       string
	UploadAPIKey    string
	UploadAPISecret string

	// ExternalTimeout bounds each geocode or upload round-trip.
	// Defaults to 10s. Set EXTERNAL_TIMEOUT to a Go duration to override.
	ExternalTimeout time.Duration

	// MaxUploadBytes caps the multipart create request body.
	// Defaults to 10 MiB.
	MaxUploadBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		GeocoderBaseURL: getEnv("GEOCODER_BASE_URL", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
	}

	var missing []string
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"JWT_SECRET", &cfg.JWTSecret},
		{"GEOCODER_TOKEN", &cfg.GeocoderToken},
		{"CLOUDINARY_CLOUD_NAME", &cfg.CloudName},
		{"CLOUDINARY_API_KEY", &cfg.UploadAPIKey},
		{"CLOUDINARY_API_SECRET", &cfg.UploadAPISecret},
	} {
		*v.dst = os.Getenv(v.name)
		if *v.dst == "" {
			missing = append(missing, v.name)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	timeout, err := time.ParseDuration(getEnv("EXTERNAL_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EXTERNAL_TIMEOUT: %w", err)
	}
	cfg.ExternalTimeout = timeout

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = maxUpload

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
