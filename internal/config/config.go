package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Location sources.
const (
	SourceIP      = "ip"
	SourceStatic  = "static"
	SourceAddress = "address"
	SourceNone    = "none"
)

// Config holds all client settings. Values come from environment variables,
// falling back to an optional YAML file and then to defaults.
type Config struct {
	EventsAPIURL     string
	EventsAPIToken   string
	EventsAPITimeout time.Duration
	EventURLTemplate string

	DistanceUnit     domain.DistanceUnit
	DistanceFallback bool

	LocationSource  string
	StaticReading   domain.Reading
	LocationAddress string
	LocationOptions domain.OptionOverrides
	IPGeoURL        string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Acquisition failure reports; disabled when no brokers are set.
	KafkaBrokers     []string
	KafkaReportTopic string

	HTTPAddr          string
	ReacquireSchedule string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration
}

// KafkaEnabled reports whether failure reports are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset. path names an optional YAML file; when empty, CONFIG_FILE is
// consulted. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}
	v := values{file: file.flatten()}

	shutdownTimeout, err := v.shutdownTimeout()
	if err != nil {
		return nil, err
	}
	apiTimeout, err := v.duration("EVENTS_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := v.duration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	unit, err := domain.ParseDistanceUnit(v.get("DISTANCE_UNIT", string(domain.Miles)))
	if err != nil {
		return nil, fmt.Errorf("invalid DISTANCE_UNIT: %w", err)
	}
	fallback, err := v.boolean("DISTANCE_FALLBACK", true)
	if err != nil {
		return nil, err
	}
	opts, err := v.locationOptions()
	if err != nil {
		return nil, err
	}
	cacheSize, err := v.positiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	mapboxToken := v.get("MAPBOX_TOKEN", "")
	mapboxEnabled := mapboxToken != ""
	if s := v.get("MAPBOX_ENABLED", ""); s != "" {
		mapboxEnabled = s == "true"
	}

	cfg := &Config{
		EventsAPIURL:     v.get("EVENTS_API_URL", "http://localhost:4000/graphql"),
		EventsAPIToken:   v.get("EVENTS_API_TOKEN", ""),
		EventsAPITimeout: apiTimeout,
		EventURLTemplate: v.get("EVENT_URL_TEMPLATE", ""),

		DistanceUnit:     unit,
		DistanceFallback: fallback,

		LocationSource:  strings.ToLower(v.get("LOCATION_SOURCE", SourceIP)),
		LocationAddress: v.get("LOCATION_ADDRESS", ""),
		LocationOptions: opts,
		IPGeoURL:        v.get("IPGEO_URL", "http://ip-api.com/json/"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: cacheSize,

		KafkaBrokers:     sharedcfg.ParseBrokers(v.get("KAFKA_BROKERS", "")),
		KafkaReportTopic: v.get("KAFKA_REPORT_TOPIC", "location-acquisition-reports"),

		HTTPAddr:          v.get("HTTP_ADDR", ":8080"),
		ReacquireSchedule: v.get("REACQUIRE_SCHEDULE", ""),
		LogLevel:          v.get("LOG_LEVEL", "info"),
		LogFormat:         v.get("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	if err := cfg.validate(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(v values) error {
	u, err := url.Parse(c.EventsAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid EVENTS_API_URL %q", c.EventsAPIURL)
	}

	switch c.LocationSource {
	case SourceIP, SourceNone:
	case SourceStatic:
		r, err := domain.ParseReading(v.get("LOCATION_STATIC", ""))
		if err != nil {
			return fmt.Errorf("invalid LOCATION_STATIC: %w", err)
		}
		c.StaticReading = r
	case SourceAddress:
		if c.LocationAddress == "" {
			return errors.New("LOCATION_SOURCE is address but LOCATION_ADDRESS is not set")
		}
		if !c.MapboxEnabled {
			return errors.New("LOCATION_SOURCE is address but Mapbox geocoding is disabled")
		}
	default:
		return fmt.Errorf("invalid LOCATION_SOURCE %q: must be ip, static, address, or none", c.LocationSource)
	}

	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if c.KafkaEnabled() && c.KafkaReportTopic == "" {
		return errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.ReacquireSchedule != "" {
		if _, err := cron.ParseStandard(c.ReacquireSchedule); err != nil {
			return fmt.Errorf("invalid REACQUIRE_SCHEDULE: %w", err)
		}
	}
	if c.EventURLTemplate != "" && strings.Count(c.EventURLTemplate, "%s") != 1 {
		return errors.New("EVENT_URL_TEMPLATE must contain exactly one %s")
	}
	return nil
}

// values resolves a key from the environment first, then the file.
type values struct {
	file map[string]string
}

func (v values) get(key, fallback string) string {
	if f, ok := v.file[key]; ok && f != "" {
		fallback = f
	}
	return sharedcfg.EnvOrDefault(key, fallback)
}

func (v values) set(key string) bool {
	return v.get(key, "") != ""
}

func (v values) duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(v.get(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func (v values) boolean(key string, fallback bool) (bool, error) {
	s := v.get(key, "")
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func (v values) positiveInt(key string, fallback int) (int, error) {
	s := v.get(key, "")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// shutdownTimeout defers to the shared parser unless only the file sets it.
func (v values) shutdownTimeout() (time.Duration, error) {
	if os.Getenv("SHUTDOWN_TIMEOUT") == "" && v.file["SHUTDOWN_TIMEOUT"] != "" {
		return v.duration("SHUTDOWN_TIMEOUT", "10s")
	}
	return sharedcfg.ParseShutdownTimeout()
}

// locationOptions builds overrides only for the options that were set, so
// unset options keep their defaults.
func (v values) locationOptions() (domain.OptionOverrides, error) {
	var o domain.OptionOverrides
	if v.set("LOCATION_HIGH_ACCURACY") {
		b, err := v.boolean("LOCATION_HIGH_ACCURACY", true)
		if err != nil {
			return o, err
		}
		o.EnableHighAccuracy = &b
	}
	if v.set("LOCATION_TIMEOUT") {
		d, err := v.duration("LOCATION_TIMEOUT", "")
		if err != nil {
			return o, err
		}
		o.Timeout = &d
	}
	if v.set("LOCATION_MAXIMUM_AGE") {
		d, err := time.ParseDuration(v.get("LOCATION_MAXIMUM_AGE", ""))
		if err != nil || d < 0 {
			return o, errors.New("invalid LOCATION_MAXIMUM_AGE: must be a non-negative duration")
		}
		o.MaximumAge = &d
	}
	return o, nil
}
