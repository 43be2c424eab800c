package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/observability"
)

// Provider acquires the user's location from a Platform and publishes the
// last known Reading. It requests a fix once on Start; every further attempt
// is caller-driven through Reacquire. Overlapping attempts are not fenced:
// whichever platform response arrives last wins.
type Provider struct {
	platform Platform
	opts     domain.AcquisitionOptions
	sink     Sink
	logger   *slog.Logger
	metrics  *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	reading domain.Reading
	started bool
	closed  bool
	subs    map[*subscriber]struct{}
}

type subscriber struct {
	ch chan domain.Reading
}

// NewProvider creates a Provider. A nil platform behaves like a host without
// location support, a nil overrides value uses the default options, and a
// nil sink drops failure reports after logging them.
func NewProvider(platform Platform, overrides *domain.OptionOverrides, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Provider {
	if platform == nil {
		platform = Unavailable{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Provider{
		platform: platform,
		opts:     domain.ResolveOptions(overrides),
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Options returns the effective acquisition options.
func (p *Provider) Options() domain.AcquisitionOptions {
	return p.opts
}

// Start performs the single automatic acquisition. Later calls are no-ops.
func (p *Provider) Start() {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.acquire()
}

// Reacquire requests a new fix. It may be called any number of times.
func (p *Provider) Reacquire() {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.acquire()
}

// Reading returns the last known reading, absent if no acquisition has
// succeeded yet.
func (p *Provider) Reading() domain.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reading
}

// Subscribe returns a channel that receives the reading after every
// successful acquisition. The channel holds only the most recent reading; a
// slow consumer sees the latest value rather than a backlog. The returned
// func unsubscribes; Close closes all subscriber channels.
func (p *Provider) Subscribe() (<-chan domain.Reading, func()) {
	s := &subscriber{ch: make(chan domain.Reading, 1)}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	p.subs[s] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[s]; ok {
				delete(p.subs, s)
				close(s.ch)
			}
		})
	}
}

// Close detaches the provider. Platform callbacks that arrive afterwards are
// ignored and subscriber channels are closed.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for s := range p.subs {
		close(s.ch)
	}
	p.subs = nil
	p.mu.Unlock()

	p.cancel()
}

func (p *Provider) acquire() {
	source := p.platform.Name()
	p.logger.Debug("requesting geolocation",
		"source", source,
		"high_accuracy", p.opts.EnableHighAccuracy,
		"timeout", p.opts.Timeout,
		"maximum_age", p.opts.MaximumAge,
	)

	defer func() {
		if r := recover(); r != nil {
			p.onError(source, &domain.PositionError{
				Code:    domain.PositionUnavailable,
				Message: fmt.Sprintf("platform panic: %v", r),
			})
		}
	}()

	p.platform.GetCurrentPosition(p.ctx,
		func(pos domain.Position) { p.onSuccess(source, pos) },
		func(err *domain.PositionError) { p.onError(source, err) },
		p.opts,
	)
}

func (p *Provider) onSuccess(source string, pos domain.Position) {
	reading := pos.Reading()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.reading = reading
	for s := range p.subs {
		offerLatest(s.ch, reading)
	}
	p.mu.Unlock()

	p.metrics.Acquisitions.WithLabelValues(source, "success").Inc()
	p.metrics.ReadingPresent.Set(1)
	p.logger.Info("user coordinates acquired",
		"source", source,
		"latitude", reading.Latitude,
		"longitude", reading.Longitude,
		"accuracy", pos.Accuracy,
	)
}

func (p *Provider) onError(source string, perr *domain.PositionError) {
	if perr == nil {
		perr = &domain.PositionError{Code: domain.PositionUnavailable, Message: "unknown error"}
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}

	p.metrics.Acquisitions.WithLabelValues(source, "failure").Inc()
	p.metrics.AcquisitionFailures.WithLabelValues(perr.CodeName()).Inc()

	failure := domain.AcquisitionFailure{
		Code:       perr.Code,
		CodeName:   perr.CodeName(),
		Message:    perr.Message,
		Source:     source,
		OccurredAt: domain.Clock().Now(),
	}
	if p.sink == nil {
		p.logger.Warn("geolocation acquisition failed", "code", perr.Code, "message", perr.Message, "source", source)
		return
	}
	p.sink.Report(p.ctx, failure)
}

// offerLatest replaces any unread value in a one-slot channel with v.
// Callers hold p.mu, so there is a single sender per channel.
func offerLatest(ch chan domain.Reading, v domain.Reading) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
