// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Request   RequestConfig   `yaml:"request"`
	DB        DBConfig        `yaml:"db"`
	Places    PlacesConfig    `yaml:"places"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Audio     AudioConfig     `yaml:"audio"`
	Language  string          `yaml:"language"` // "vi" or "en"
}

// ServerConfig holds local HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogSettings configures one log output.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// DBConfig holds the response cache database settings. An empty path runs
// without a response cache.
type DBConfig struct {
	Path     string   `yaml:"path"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// PlacesConfig holds settings for the places REST API.
type PlacesConfig struct {
	BaseURL           string   `yaml:"base_url"`
	RadiusMeters      int      `yaml:"radius_meters"`
	PollInterval      Duration `yaml:"poll_interval"`
	MovementThreshold float64  `yaml:"movement_threshold_m"`
}

// GeocodingConfig holds settings for the public geocoding search.
type GeocodingConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Contact     string   `yaml:"contact"` // required by the nominatim usage policy
	Debounce    Duration `yaml:"debounce"`
	MinQueryLen int      `yaml:"min_query_len"`
	MaxResults  int      `yaml:"max_results"`
}

// SensorConfig holds settings for the position source.
type SensorConfig struct {
	Provider         string        `yaml:"provider"` // "mock", "denied"
	Accuracy         string        `yaml:"accuracy"` // "high", "balanced"
	DistanceInterval float64       `yaml:"distance_interval_m"`
	Mock             MockLocConfig `yaml:"mock"`
}

// MockLocConfig holds settings for the mock position walker.
type MockLocConfig struct {
	StartLat float64  `yaml:"start_lat"`
	StartLon float64  `yaml:"start_lon"`
	SpeedKmh float64  `yaml:"speed_kmh"`
	Tick     Duration `yaml:"tick"`
}

// AudioConfig holds playback settings.
type AudioConfig struct {
	Volume float64 `yaml:"volume"` // 0.0 to 1.0
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8090"},
		Log: LogConfig{
			Server:   LogSettings{Path: "./logs/server.log", Level: "INFO"},
			Requests: LogSettings{Path: "./logs/requests.log", Level: "INFO"},
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		DB: DBConfig{
			Path:     "./data/hihimaps.db",
			CacheTTL: Duration(24 * time.Hour),
		},
		Places: PlacesConfig{
			BaseURL:           "http://192.168.23.102:8081/shtem-restful-api",
			RadiusMeters:      5000,
			PollInterval:      Duration(10 * time.Second),
			MovementThreshold: 100,
		},
		Geocoding: GeocodingConfig{
			BaseURL:     "https://nominatim.openstreetmap.org",
			Contact:     "dbao09107@gmail.com",
			Debounce:    Duration(300 * time.Millisecond),
			MinQueryLen: 2,
			MaxResults:  10,
		},
		Sensor: SensorConfig{
			Provider:         "mock",
			Accuracy:         "high",
			DistanceInterval: 100,
			Mock: MockLocConfig{
				StartLat: 21.0278,
				StartLon: 105.8342,
				SpeedKmh: 5,
				Tick:     Duration(time.Second),
			},
		},
		Audio:    AudioConfig{Volume: 1.0},
		Language: "vi",
	}
}

// Load reads the config file at path, merging it over the defaults.
// A .env file next to the binary can override selected values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env overrides (not saved back to disk)
	_ = godotenv.Load()
	if v := os.Getenv("HIHIMAPS_PLACES_URL"); v != "" {
		cfg.Places.BaseURL = v
	}
	if v := os.Getenv("HIHIMAPS_GEOCODER_URL"); v != "" {
		cfg.Geocoding.BaseURL = v
	}
	if v := os.Getenv("HIHIMAPS_CONTACT"); v != "" {
		cfg.Geocoding.Contact = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Places.BaseURL == "" {
		return fmt.Errorf("places.base_url must not be empty")
	}
	if c.Places.RadiusMeters <= 0 {
		return fmt.Errorf("places.radius_meters must be positive")
	}
	// A zero interval would fire the poll job on every scheduler tick.
	if time.Duration(c.Places.PollInterval) <= 0 {
		return fmt.Errorf("places.poll_interval must be positive")
	}
	if c.Geocoding.MinQueryLen < 1 {
		return fmt.Errorf("geocoding.min_query_len must be at least 1")
	}
	switch c.Language {
	case "vi", "en":
	default:
		return fmt.Errorf("language must be \"vi\" or \"en\", got %q", c.Language)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# HihiMaps Configuration
# ----------------------
# Durations use Go syntax: 300ms, 10s, 1m.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
