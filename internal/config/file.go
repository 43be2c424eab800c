package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML file layout. Every field maps onto one
// environment variable.
type fileConfig struct {
	EventsAPI struct {
		URL         string `yaml:"url"`
		Token       string `yaml:"token"`
		Timeout     string `yaml:"timeout"`
		URLTemplate string `yaml:"event_url_template"`
	} `yaml:"events_api"`

	Distance struct {
		Unit     string `yaml:"unit"`
		Fallback *bool  `yaml:"fallback"`
	} `yaml:"distance"`

	Location struct {
		Source       string `yaml:"source"`
		Static       string `yaml:"static"`
		Address      string `yaml:"address"`
		HighAccuracy *bool  `yaml:"high_accuracy"`
		Timeout      string `yaml:"timeout"`
		MaximumAge   string `yaml:"maximum_age"`
		IPGeoURL     string `yaml:"ipgeo_url"`
	} `yaml:"location"`

	Mapbox struct {
		Token     string `yaml:"token"`
		Enabled   *bool  `yaml:"enabled"`
		Timeout   string `yaml:"timeout"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"mapbox"`

	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		ReportTopic string   `yaml:"report_topic"`
	} `yaml:"kafka"`

	HTTPAddr          string `yaml:"http_addr"`
	ReacquireSchedule string `yaml:"reacquire_schedule"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func readFile(path string) (*fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return &fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// flatten keys the file values by environment variable name. Unset fields
// are omitted.
func (fc *fileConfig) flatten() map[string]string {
	m := map[string]string{
		"EVENTS_API_URL":       fc.EventsAPI.URL,
		"EVENTS_API_TOKEN":     fc.EventsAPI.Token,
		"EVENTS_API_TIMEOUT":   fc.EventsAPI.Timeout,
		"EVENT_URL_TEMPLATE":   fc.EventsAPI.URLTemplate,
		"DISTANCE_UNIT":        fc.Distance.Unit,
		"LOCATION_SOURCE":      fc.Location.Source,
		"LOCATION_STATIC":      fc.Location.Static,
		"LOCATION_ADDRESS":     fc.Location.Address,
		"LOCATION_TIMEOUT":     fc.Location.Timeout,
		"LOCATION_MAXIMUM_AGE": fc.Location.MaximumAge,
		"IPGEO_URL":            fc.Location.IPGeoURL,
		"MAPBOX_TOKEN":         fc.Mapbox.Token,
		"MAPBOX_TIMEOUT":       fc.Mapbox.Timeout,
		"KAFKA_BROKERS":        strings.Join(fc.Kafka.Brokers, ","),
		"KAFKA_REPORT_TOPIC":   fc.Kafka.ReportTopic,
		"HTTP_ADDR":            fc.HTTPAddr,
		"REACQUIRE_SCHEDULE":   fc.ReacquireSchedule,
		"SHUTDOWN_TIMEOUT":     fc.ShutdownTimeout,
		"LOG_LEVEL":            fc.Log.Level,
		"LOG_FORMAT":           fc.Log.Format,
	}
	putBool(m, "DISTANCE_FALLBACK", fc.Distance.Fallback)
	putBool(m, "LOCATION_HIGH_ACCURACY", fc.Location.HighAccuracy)
	putBool(m, "MAPBOX_ENABLED", fc.Mapbox.Enabled)
	if fc.Mapbox.CacheSize != 0 {
		m["MAPBOX_CACHE_SIZE"] = strconv.Itoa(fc.Mapbox.CacheSize)
	}
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

func putBool(m map[string]string, key string, b *bool) {
	if b != nil {
		m[key] = strconv.FormatBool(*b)
	}
}
