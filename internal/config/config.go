// Package config provides configuration parsing and validation for the
// tracker. All values come from the environment; a .env file is loaded
// by main before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration parameters for the tracker.
type Config struct {
	// Home point and capture radius.
	HomeLat      float64
	HomeLon      float64
	RadiusMeters float64
	HomeAirport  string

	// Landing corridor.
	MinAltitudeFt float64
	MaxAltitudeFt float64
	MinHeadingDeg float64
	MaxHeadingDeg float64

	// Polling cadence and history retention.
	UpdateInterval time.Duration
	AlertInterval  time.Duration
	Retention      time.Duration

	// Upstream endpoints.
	TelemetryURL string
	HazardURL    string

	// Hazard areas of interest.
	TargetAreas []string

	// Backing services.
	RedisAddr    string
	PostgresDSN  string
	KafkaBrokers string
	LandingTopic string
	AlertTopic   string

	// Delivery.
	TelegramToken   string
	Subscribers     []string
	DeliveryTimeout time.Duration

	// HTTP API.
	HTTPPort int
}

// Load reads the configuration from the environment, filling defaults
// for everything optional.
func Load() (*Config, error) {
	cfg := &Config{
		HomeAirport:     getEnv("HOME_AIRPORT", "TLV"),
		UpdateInterval:  30 * time.Second,
		AlertInterval:   5 * time.Second,
		Retention:       24 * time.Hour,
		TelemetryURL:    getEnv("TELEMETRY_URL", "https://data-cloud.flightradar24.com/zones/fcgi/feed.js"),
		HazardURL:       getEnv("HAZARD_URL", "https://www.oref.org.il/WarningMessages/alert/alerts.json"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		LandingTopic:    getEnv("LANDING_TOPIC", "flights.landing"),
		AlertTopic:      getEnv("ALERT_TOPIC", "alerts.onset"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		DeliveryTimeout: 10 * time.Second,
		HTTPPort:        8000,
	}

	for _, key := range []string{"HOME_LAT", "HOME_LON", "RADIUS_METERS"} {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	var err error
	if cfg.HomeLat, err = getFloat("HOME_LAT", 0); err != nil {
		return nil, err
	}
	if cfg.HomeLon, err = getFloat("HOME_LON", 0); err != nil {
		return nil, err
	}
	if cfg.RadiusMeters, err = getFloat("RADIUS_METERS", 0); err != nil {
		return nil, err
	}
	if cfg.MinAltitudeFt, err = getFloat("MIN_ALT", 1600); err != nil {
		return nil, err
	}
	if cfg.MaxAltitudeFt, err = getFloat("MAX_ALT", 2500); err != nil {
		return nil, err
	}
	if cfg.MinHeadingDeg, err = getFloat("MIN_HDG", 85); err != nil {
		return nil, err
	}
	if cfg.MaxHeadingDeg, err = getFloat("MAX_HDG", 130); err != nil {
		return nil, err
	}
	if cfg.UpdateInterval, err = getDuration("UPDATE_INTERVAL", cfg.UpdateInterval); err != nil {
		return nil, err
	}
	if cfg.AlertInterval, err = getDuration("ALERT_INTERVAL", cfg.AlertInterval); err != nil {
		return nil, err
	}
	if cfg.DeliveryTimeout, err = getDuration("DELIVERY_TIMEOUT", cfg.DeliveryTimeout); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = getInt("HTTP_PORT", cfg.HTTPPort); err != nil {
		return nil, err
	}

	retentionHours, err := getInt("RETENTION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.Retention = time.Duration(retentionHours) * time.Hour

	cfg.TargetAreas = splitList(getEnv("TARGET_AREAS", "תל אביב - דרום,תל אביב"))
	cfg.Subscribers = splitList(os.Getenv("SUBSCRIBERS"))

	return cfg, nil
}

// Validate checks that all required configuration fields are set and
// have valid values. Returns an error if validation fails, nil
// otherwise.
func (c *Config) Validate() error {
	if c.HomeLat < -90 || c.HomeLat > 90 {
		return fmt.Errorf("HOME_LAT must be in [-90, 90], got %v", c.HomeLat)
	}
	if c.HomeLon < -180 || c.HomeLon > 180 {
		return fmt.Errorf("HOME_LON must be in [-180, 180], got %v", c.HomeLon)
	}
	if c.RadiusMeters <= 0 {
		return fmt.Errorf("RADIUS_METERS must be > 0, got %v", c.RadiusMeters)
	}
	if c.MinAltitudeFt > c.MaxAltitudeFt {
		return fmt.Errorf("MIN_ALT (%v) must not exceed MAX_ALT (%v)", c.MinAltitudeFt, c.MaxAltitudeFt)
	}
	if c.MinHeadingDeg > c.MaxHeadingDeg {
		return fmt.Errorf("MIN_HDG (%v) must not exceed MAX_HDG (%v)", c.MinHeadingDeg, c.MaxHeadingDeg)
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL must be > 0, got %v", c.UpdateInterval)
	}
	if c.AlertInterval <= 0 {
		return fmt.Errorf("ALERT_INTERVAL must be > 0, got %v", c.AlertInterval)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("RETENTION_HOURS must be > 0, got %v", c.Retention)
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty")
	}
	if len(c.TargetAreas) == 0 {
		return fmt.Errorf("TARGET_AREAS cannot be empty")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTPPort)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	// Accept plain seconds as well as Go duration syntax.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
