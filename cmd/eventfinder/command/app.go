package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-finder/internal/adapter/graphql"
	"github.com/couchcryptid/event-finder/internal/adapter/ipgeo"
	kafkaadapter "github.com/couchcryptid/event-finder/internal/adapter/kafka"
	"github.com/couchcryptid/event-finder/internal/adapter/mapbox"
	"github.com/couchcryptid/event-finder/internal/adapter/static"
	"github.com/couchcryptid/event-finder/internal/config"
	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/location"
	"github.com/couchcryptid/event-finder/internal/observability"
	"github.com/couchcryptid/event-finder/internal/query"
)

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	events   *graphql.Client
	geocoder domain.Geocoder
	reports  *kafkaadapter.ReportWriter
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		events:  graphql.NewClient(cfg.EventsAPIURL, cfg.EventsAPIToken, cfg.EventsAPITimeout, logger),
	}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		a.geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Debug("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	}

	if cfg.KafkaEnabled() {
		a.reports = kafkaadapter.NewReportWriter(cfg.KafkaBrokers, cfg.KafkaReportTopic, logger)
		logger.Debug("acquisition reports enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}
	return a, nil
}

func (a *app) close() {
	if a.reports != nil {
		if err := a.reports.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
}

// platform selects the location source. A nil platform makes the provider
// report every attempt as position unavailable.
func (a *app) platform() location.Platform {
	switch a.cfg.LocationSource {
	case config.SourceIP:
		return ipgeo.NewPlatform(a.cfg.IPGeoURL, a.logger)
	case config.SourceStatic:
		return static.NewPlatform(a.cfg.StaticReading.Latitude, a.cfg.StaticReading.Longitude)
	case config.SourceAddress:
		return mapbox.NewAddressPlatform(a.geocoder, a.cfg.LocationAddress, a.logger)
	default:
		return nil
	}
}

func (a *app) sink() location.Sink {
	sinks := location.MultiSink{observability.NewLogSink(a.logger)}
	if a.reports != nil {
		sinks = append(sinks, a.reports)
	}
	return sinks
}

func (a *app) newProvider() *location.Provider {
	return location.NewProvider(a.platform(), &a.cfg.LocationOptions, a.sink(), a.logger, a.metrics)
}

func (a *app) newController(eventID string) *query.Controller {
	return query.NewController(a.events, eventID, a.logger, a.metrics,
		query.WithDistanceUnit(a.cfg.DistanceUnit),
		query.WithLocalDistance(a.cfg.DistanceFallback),
	)
}

// placeName reverse-geocodes the reading for display. It returns "" when
// geocoding is disabled or finds nothing.
func (a *app) placeName(ctx context.Context, r domain.Reading) string {
	if a.geocoder == nil || r.Absent() {
		return ""
	}
	res, err := a.geocoder.ReverseGeocode(ctx, r.Latitude, r.Longitude)
	if err != nil {
		a.logger.Debug("reverse geocode failed", "error", err)
		return ""
	}
	if res.PlaceName != "" {
		return res.PlaceName
	}
	return res.FormattedAddress
}

// acquisitionWindow bounds how long one-shot commands wait for a fix.
func (a *app) acquisitionWindow(p *location.Provider) time.Duration {
	return p.Options().Timeout + time.Second
}

// awaitReading starts the provider and waits for the first successful
// acquisition. It returns an absent reading when the window elapses first.
func awaitReading(ctx context.Context, p *location.Provider, window time.Duration) domain.Reading {
	readings, unsubscribe := p.Subscribe()
	defer unsubscribe()
	p.Start()

	timer := domain.Clock().NewTimer(window)
	defer timer.Stop()

	select {
	case r, ok := <-readings:
		if ok {
			return r
		}
	case <-timer.Chan():
	case <-ctx.Done():
	}
	return p.Reading()
}
