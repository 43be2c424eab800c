package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000/graphql", cfg.EventsAPIURL)
	assert.Empty(t, cfg.EventsAPIToken)
	assert.Equal(t, 10*time.Second, cfg.EventsAPITimeout)
	assert.Equal(t, domain.Miles, cfg.DistanceUnit)
	assert.True(t, cfg.DistanceFallback)
	assert.Equal(t, SourceIP, cfg.LocationSource)
	assert.Equal(t, domain.OptionOverrides{}, cfg.LocationOptions)
	assert.Equal(t, "http://ip-api.com/json/", cfg.IPGeoURL)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "location-acquisition-reports", cfg.KafkaReportTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.ReacquireSchedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("EVENTS_API_URL", "https://events.example.com/graphql")
	t.Setenv("EVENTS_API_TOKEN", "tok")
	t.Setenv("EVENTS_API_TIMEOUT", "3s")
	t.Setenv("DISTANCE_UNIT", "km")
	t.Setenv("DISTANCE_FALLBACK", "false")
	t.Setenv("LOCATION_SOURCE", "static")
	t.Setenv("LOCATION_STATIC", "39.7392,-104.9903")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "reports")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REACQUIRE_SCHEDULE", "*/5 * * * *")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://events.example.com/graphql", cfg.EventsAPIURL)
	assert.Equal(t, "tok", cfg.EventsAPIToken)
	assert.Equal(t, 3*time.Second, cfg.EventsAPITimeout)
	assert.Equal(t, domain.Kilometers, cfg.DistanceUnit)
	assert.False(t, cfg.DistanceFallback)
	assert.Equal(t, SourceStatic, cfg.LocationSource)
	assert.Equal(t, domain.NewReading(39.7392, -104.9903), cfg.StaticReading)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "reports", cfg.KafkaReportTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "*/5 * * * *", cfg.ReacquireSchedule)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_LocationOptionsOnlyWhenSet(t *testing.T) {
	t.Setenv("LOCATION_HIGH_ACCURACY", "false")
	t.Setenv("LOCATION_MAXIMUM_AGE", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	require.NotNil(t, cfg.LocationOptions.EnableHighAccuracy)
	assert.False(t, *cfg.LocationOptions.EnableHighAccuracy)
	assert.Nil(t, cfg.LocationOptions.Timeout)
	require.NotNil(t, cfg.LocationOptions.MaximumAge)
	assert.Equal(t, 30*time.Second, *cfg.LocationOptions.MaximumAge)

	opts := domain.ResolveOptions(&cfg.LocationOptions)
	assert.False(t, opts.EnableHighAccuracy)
	assert.Equal(t, domain.DefaultTimeout, opts.Timeout)
	assert.Equal(t, 30*time.Second, opts.MaximumAge)
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxDisabledExplicitly(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_AddressSource(t *testing.T) {
	t.Setenv("LOCATION_SOURCE", "address")
	t.Setenv("LOCATION_ADDRESS", "1600 Pennsylvania Ave, Washington DC")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceAddress, cfg.LocationSource)
	assert.Equal(t, "1600 Pennsylvania Ave, Washington DC", cfg.LocationAddress)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"api url scheme", map[string]string{"EVENTS_API_URL": "ftp://x/graphql"}, "EVENTS_API_URL"},
		{"api timeout", map[string]string{"EVENTS_API_TIMEOUT": "soon"}, "EVENTS_API_TIMEOUT"},
		{"distance unit", map[string]string{"DISTANCE_UNIT": "furlongs"}, "DISTANCE_UNIT"},
		{"fallback flag", map[string]string{"DISTANCE_FALLBACK": "maybe"}, "DISTANCE_FALLBACK"},
		{"unknown source", map[string]string{"LOCATION_SOURCE": "gps"}, "LOCATION_SOURCE"},
		{"static without reading", map[string]string{"LOCATION_SOURCE": "static"}, "LOCATION_STATIC"},
		{"static out of range", map[string]string{"LOCATION_SOURCE": "static", "LOCATION_STATIC": "91,0"}, "LOCATION_STATIC"},
		{"address without address", map[string]string{"LOCATION_SOURCE": "address", "MAPBOX_TOKEN": testMapboxToken}, "LOCATION_ADDRESS"},
		{"address without mapbox", map[string]string{"LOCATION_SOURCE": "address", "LOCATION_ADDRESS": "Denver"}, "Mapbox"},
		{"location timeout", map[string]string{"LOCATION_TIMEOUT": "0s"}, "LOCATION_TIMEOUT"},
		{"maximum age", map[string]string{"LOCATION_MAXIMUM_AGE": "-1s"}, "LOCATION_MAXIMUM_AGE"},
		{"high accuracy", map[string]string{"LOCATION_HIGH_ACCURACY": "yes please"}, "LOCATION_HIGH_ACCURACY"},
		{"cron", map[string]string{"REACQUIRE_SCHEDULE": "every so often"}, "REACQUIRE_SCHEDULE"},
		{"url template", map[string]string{"EVENT_URL_TEMPLATE": "https://example.com/events"}, "EVENT_URL_TEMPLATE"},
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "invalid"}, "SHUTDOWN_TIMEOUT"},
		{"cache size not a number", map[string]string{"MAPBOX_CACHE_SIZE": "abc"}, "MAPBOX_CACHE_SIZE"},
		{"cache size negative", map[string]string{"MAPBOX_CACHE_SIZE": "-5"}, "MAPBOX_CACHE_SIZE"},
		{"cache size zero", map[string]string{"MAPBOX_CACHE_SIZE": "0"}, "MAPBOX_CACHE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
events_api:
  url: https://api.example.com/graphql
  event_url_template: https://example.com/events/%s
distance:
  unit: kilometers
  fallback: false
location:
  source: static
  static: "10,20"
  high_accuracy: false
kafka:
  brokers: [k1:9092, k2:9092]
http_addr: ":7070"
shutdown_timeout: 20s
log:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/graphql", cfg.EventsAPIURL)
	assert.Equal(t, "https://example.com/events/%s", cfg.EventURLTemplate)
	assert.Equal(t, domain.Kilometers, cfg.DistanceUnit)
	assert.False(t, cfg.DistanceFallback)
	assert.Equal(t, domain.NewReading(10, 20), cfg.StaticReading)
	require.NotNil(t, cfg.LocationOptions.EnableHighAccuracy)
	assert.False(t, *cfg.LocationOptions.EnableHighAccuracy)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 20*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
http_addr: ":7070"
shutdown_timeout: 20s
distance:
  unit: kilometers
`)
	t.Setenv("HTTP_ADDR", ":6060")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, domain.Kilometers, cfg.DistanceUnit)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "http_addr: \":5050\"\n")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5050", cfg.HTTPAddr)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeConfigFile(t, "unknown_key: 1\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
