package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers and Lambda.

	"github.com/couchcryptid/laundry-alert/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultLocations are the three Suginami areas watched when LOCATIONS is unset.
const DefaultLocations = "Suginami Central@35.6994,139.6364;Suginami North West@35.7250,139.6010;Suginami South@35.6800,139.6150"

// Config holds all job settings, populated from environment variables once
// at startup and passed explicitly to every component.
type Config struct {
	Locations []domain.Location

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherLang    string

	// Hyperlocal rainfall (Yahoo! Open Local Platform).
	YOLPAppID   string
	YOLPBaseURL string

	// LINE Messaging API push notification.
	LineChannelToken string
	LineUserID       string
	LineBaseURL      string

	ProviderTimeout         time.Duration
	NotifyTimeout           time.Duration
	RunTimeout              time.Duration
	ProviderBreakerFailures uint32

	ReportTemplate string
	ReportOutput   string
	ReportURL      string
	ReportMaxRows  int
	Timezone       *time.Location

	PushgatewayURL string
	KafkaBrokers   []string
	KafkaTopic     string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present;
// real environment variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := parsePositiveDuration("NOTIFY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	runTimeout, err := parsePositiveDuration("RUN_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	breakerFailures, err := strconv.ParseUint(sharedcfg.EnvOrDefault("PROVIDER_BREAKER_FAILURES", "3"), 10, 32)
	if err != nil {
		return nil, errors.New("invalid PROVIDER_BREAKER_FAILURES")
	}

	maxRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("REPORT_MAX_ROWS", "8"))
	if err != nil || maxRows < 1 || maxRows > 40 {
		return nil, errors.New("invalid REPORT_MAX_ROWS: must be between 1 and 40")
	}

	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIMEZONE", "Asia/Tokyo"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	locations, err := ParseLocations(sharedcfg.EnvOrDefault("LOCATIONS", DefaultLocations))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Locations: locations,

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherLang:    sharedcfg.EnvOrDefault("OPENWEATHER_LANG", "ja"),

		YOLPAppID:   os.Getenv("YOLP_APP_ID"),
		YOLPBaseURL: sharedcfg.EnvOrDefault("YOLP_BASE_URL", "https://map.yahooapis.jp/weather/V1/place"),

		LineChannelToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineUserID:       os.Getenv("LINE_USER_ID"),
		LineBaseURL:      sharedcfg.EnvOrDefault("LINE_BASE_URL", "https://api.line.me"),

		ProviderTimeout:         providerTimeout,
		NotifyTimeout:           notifyTimeout,
		RunTimeout:              runTimeout,
		ProviderBreakerFailures: uint32(breakerFailures),

		ReportTemplate: os.Getenv("REPORT_TEMPLATE"),
		ReportOutput:   sharedcfg.EnvOrDefault("REPORT_OUTPUT", "index.html"),
		ReportURL:      os.Getenv("REPORT_URL"),
		ReportMaxRows:  maxRows,
		Timezone:       tz,

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "laundry-readings"),

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.ReportOutput == "" {
		return nil, errors.New("REPORT_OUTPUT is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// ConditionsEnabled reports whether the primary weather provider has a credential.
func (c *Config) ConditionsEnabled() bool { return c.OpenWeatherAPIKey != "" }

// PrecipitationEnabled reports whether the hyperlocal rainfall provider is configured.
func (c *Config) PrecipitationEnabled() bool { return c.YOLPAppID != "" }

// NotifyEnabled reports whether push notification is configured.
func (c *Config) NotifyEnabled() bool { return c.LineChannelToken != "" && c.LineUserID != "" }

// PublishEnabled reports whether readings are published to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// MetricsPushEnabled reports whether metrics are pushed to a Pushgateway.
func (c *Config) MetricsPushEnabled() bool { return c.PushgatewayURL != "" }

// MissingCapabilities lists every capability disabled by an absent credential.
func (c *Config) MissingCapabilities() []*domain.ConfigurationError {
	var out []*domain.ConfigurationError
	if !c.ConditionsEnabled() {
		out = append(out, &domain.ConfigurationError{Capability: "weather conditions", Missing: []string{"OPENWEATHER_API_KEY"}})
	}
	if !c.PrecipitationEnabled() {
		out = append(out, &domain.ConfigurationError{Capability: "hyperlocal precipitation", Missing: []string{"YOLP_APP_ID"}})
	}
	if !c.NotifyEnabled() {
		var missing []string
		if c.LineChannelToken == "" {
			missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
		}
		if c.LineUserID == "" {
			missing = append(missing, "LINE_USER_ID")
		}
		out = append(out, &domain.ConfigurationError{Capability: "notification", Missing: missing})
	}
	return out
}

// ParseLocations parses "name@lat,lon" entries separated by semicolons.
func ParseLocations(value string) ([]domain.Location, error) {
	validate := validator.New()

	var locations []domain.Location
	seen := make(map[string]bool)
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		loc, err := parseLocation(entry)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(loc); err != nil {
			return nil, fmt.Errorf("invalid LOCATIONS entry %q: %w", entry, err)
		}
		if seen[loc.Name] {
			return nil, fmt.Errorf("invalid LOCATIONS: duplicate area %q", loc.Name)
		}
		seen[loc.Name] = true
		locations = append(locations, loc)
	}
	if len(locations) == 0 {
		return nil, errors.New("LOCATIONS is required")
	}
	return locations, nil
}

func parseLocation(entry string) (domain.Location, error) {
	at := strings.LastIndex(entry, "@")
	if at < 0 {
		return domain.Location{}, fmt.Errorf("invalid LOCATIONS entry %q: want name@lat,lon", entry)
	}
	name := strings.TrimSpace(entry[:at])
	latStr, lonStr, ok := strings.Cut(entry[at+1:], ",")
	if !ok {
		return domain.Location{}, fmt.Errorf("invalid LOCATIONS entry %q: want name@lat,lon", entry)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if errLat != nil || errLon != nil {
		return domain.Location{}, fmt.Errorf("invalid LOCATIONS entry %q: coordinates must be numbers", entry)
	}
	return domain.Location{Name: name, Latitude: lat, Longitude: lon}, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
