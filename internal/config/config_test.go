package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddr != ":8000" || cfg.LocationSource != SourceAPI {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FetchTimeout != 10*time.Second || cfg.SnapshotCacheTTL != 3*time.Second {
		t.Errorf("timeouts = %s / %s", cfg.FetchTimeout, cfg.SnapshotCacheTTL)
	}
	if cfg.Map.DefaultIntervalSeconds != 15 || cfg.Map.FocusZoom != 16 {
		t.Errorf("map = %+v", cfg.Map)
	}
	if cfg.AuthEnabled() {
		t.Error("auth enabled without a public key")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults error = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOCATION_SOURCE", "GTFSRT")
	t.Setenv("GTFSRT_URL", "https://feeds.example/vehicle-positions")
	t.Setenv("FETCH_TIMEOUT", "4s")
	t.Setenv("AUTO_REFRESH_INTERVAL", "30")
	t.Setenv("MAP_DEFAULT_LAT", "-1.2921")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/etc/keys/public.pem")

	cfg := Load()
	if cfg.LocationSource != SourceGTFSRT || cfg.FetchTimeout != 4*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Map.DefaultIntervalSeconds != 30 || cfg.Map.DefaultCenter.Lat != -1.2921 {
		t.Errorf("map = %+v", cfg.Map)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if !cfg.AuthEnabled() {
		t.Error("auth not enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAP_DEFAULT_ZOOM", "close")
	t.Setenv("FETCH_TIMEOUT", "soon")
	cfg := Load()
	if cfg.Map.DefaultZoom != 12 || cfg.FetchTimeout != 10*time.Second {
		t.Errorf("fallbacks not applied: zoom=%d timeout=%s", cfg.Map.DefaultZoom, cfg.FetchTimeout)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"unknown source", func(c *AppConfig) { c.LocationSource = "kafka" }, "LocationSource"},
		{"postgres without url", func(c *AppConfig) { c.LocationSource = SourcePostgres }, "DATABASE_URL"},
		{"gtfsrt without url", func(c *AppConfig) { c.LocationSource = SourceGTFSRT }, "GTFSRT_URL"},
		{"api without url", func(c *AppConfig) { c.FleetAPIURL = "" }, "FLEET_API_URL"},
		{"bad interval", func(c *AppConfig) { c.Map.DefaultIntervalSeconds = 0 }, "AUTO_REFRESH_INTERVAL"},
		{"bad timezone", func(c *AppConfig) { c.TimeZone = "Mars/Olympus" }, "DISPLAY_TIMEZONE"},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, "LogLevel"},
		{"zero timeout", func(c *AppConfig) { c.FetchTimeout = 0 }, "FetchTimeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}
