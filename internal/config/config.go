package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fleetmap-service/internal/domain/fleet"

	"github.com/go-playground/validator/v10"
)

const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
	SourceGTFSRT   = "gtfsrt"
)

type AppConfig struct {
	// Server
	HTTPAddr string `validate:"required"`
	GinMode  string `validate:"oneof=debug release test"`
	LogLevel string `validate:"oneof=debug info warn error"`

	// Location source
	LocationSource string        `validate:"oneof=api postgres gtfsrt"`
	FleetAPIURL    string        `validate:"omitempty,url"`
	GTFSRTURL      string        `validate:"omitempty,url"`
	FetchTimeout   time.Duration `validate:"gt=0"`
	FleetAPIToken  string
	DatabaseURL    string

	// Snapshot cache
	RedisAddr        string
	RedisPass        string
	SnapshotCacheTTL time.Duration `validate:"gte=0"`

	// Auth
	JWTPublicKeyPath string
	JWTIssuer        string
	JWTAudience      string

	// Map view
	Map      fleet.MapConfig
	TimeZone string `validate:"required"`

	AllowedOrigins []string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		LocationSource: strings.ToLower(getEnv("LOCATION_SOURCE", SourceAPI)),
		FleetAPIURL:    getEnv("FLEET_API_URL", "http://localhost:5000/api"),
		FleetAPIToken:  getEnv("FLEET_API_TOKEN", ""),
		GTFSRTURL:      getEnv("GTFSRT_URL", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 10*time.Second),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPass:        getEnv("REDIS_PASS", ""),
		SnapshotCacheTTL: getEnvDuration("SNAPSHOT_CACHE_TTL", 3*time.Second),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "fleet-app"),
		JWTAudience:      getEnv("JWT_AUDIENCE", "fleet-users"),

		Map: fleet.MapConfig{
			TileURL:     getEnv("MAP_TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
			Attribution: getEnv("MAP_ATTRIBUTION", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`),
			DefaultCenter: fleet.Coordinate{
				Lat: getEnvFloat("MAP_DEFAULT_LAT", 9.0192),
				Lng: getEnvFloat("MAP_DEFAULT_LNG", 38.7525),
			},
			DefaultZoom:            getEnvInt("MAP_DEFAULT_ZOOM", 12),
			FocusZoom:              getEnvInt("MAP_FOCUS_ZOOM", 16),
			DefaultIntervalSeconds: getEnvInt("AUTO_REFRESH_INTERVAL", 15),
			VehicleDetailsPath:     getEnv("VEHICLE_DETAILS_PATH", "/vehicles"),
		},
		TimeZone: getEnv("DISPLAY_TIMEZONE", "UTC"),

		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate checks the loaded values.
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch {
	case c.LocationSource == SourceAPI && c.FleetAPIURL == "":
		return fmt.Errorf("invalid configuration: FLEET_API_URL is required for the api source")
	case c.LocationSource == SourceGTFSRT && c.GTFSRTURL == "":
		return fmt.Errorf("invalid configuration: GTFSRT_URL is required for the gtfsrt source")
	case c.LocationSource == SourcePostgres && c.DatabaseURL == "":
		return fmt.Errorf("invalid configuration: DATABASE_URL is required for the postgres source")
	}
	if c.Map.DefaultIntervalSeconds < 1 || c.Map.DefaultIntervalSeconds > 3600 {
		return fmt.Errorf("invalid configuration: AUTO_REFRESH_INTERVAL must be between 1 and 3600")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid configuration: DISPLAY_TIMEZONE: %w", err)
	}
	return nil
}

// AuthEnabled reports whether JWT verification is configured.
func (c AppConfig) AuthEnabled() bool {
	return c.JWTPublicKeyPath != ""
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
