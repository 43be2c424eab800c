// Package query re-issues a location-dependent event query whenever the
// user's coordinate reading changes.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/observability"
	"github.com/google/uuid"
)

// Fetcher loads one event, passing the reading's coordinates as nullable
// query parameters.
type Fetcher interface {
	FetchEvent(ctx context.Context, q domain.EventQuery) (domain.Event, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDistanceUnit sets the unit used for locally computed distances.
func WithDistanceUnit(u domain.DistanceUnit) Option {
	return func(c *Controller) { c.unit = u }
}

// WithLocalDistance fills in distances the API did not annotate.
func WithLocalDistance(enabled bool) Option {
	return func(c *Controller) { c.computeMissing = enabled }
}

// Controller owns one event query. The event id is fixed; the coordinates
// follow the readings passed to Update or Run. A new query is issued only
// when the reading differs by value from the one last queried. Responses to
// superseded queries are discarded.
type Controller struct {
	fetcher        Fetcher
	eventID        string
	unit           domain.DistanceUnit
	computeMissing bool
	logger         *slog.Logger
	metrics        *observability.Metrics

	mu       sync.Mutex
	snap     Snapshot
	reading  domain.Reading
	issued   bool
	gen      uint64
	inflight context.CancelFunc
	subs     map[chan Snapshot]struct{}

	wg sync.WaitGroup
}

// NewController creates a controller for eventID in the uninitialized state.
func NewController(fetcher Fetcher, eventID string, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		eventID: eventID,
		unit:    domain.Miles,
		logger:  logger.With("event_id", eventID),
		metrics: metrics,
		subs:    make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snap = Snapshot{State: StateUninitialized, Query: domain.EventQuery{ID: eventID}}
	return c
}

// Run issues the initial query with initial, then re-issues it for every
// distinct reading received until ctx is cancelled. A closed readings
// channel stops updates but keeps the controller alive until ctx ends.
func (c *Controller) Run(ctx context.Context, initial domain.Reading, readings <-chan domain.Reading) error {
	c.Update(ctx, initial)
	for {
		select {
		case <-ctx.Done():
			c.stop()
			return nil
		case r, ok := <-readings:
			if !ok {
				readings = nil
				continue
			}
			c.Update(ctx, r)
		}
	}
}

// Update records a new reading and issues a query if this is the first
// reading or it differs from the last one queried. It reports whether a
// query was issued.
func (c *Controller) Update(ctx context.Context, r domain.Reading) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.issued && c.reading == r {
		return false
	}
	c.reading = r
	c.issued = true
	c.issueLocked(ctx)
	return true
}

// Refetch re-issues the query with the current reading. Errors are never
// retried automatically; this is the caller's way to do so.
func (c *Controller) Refetch(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued = true
	c.issueLocked(ctx)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe returns a channel receiving every state transition. Only the
// latest snapshot is buffered. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

// CheckReadiness returns nil once the event has loaded.
func (c *Controller) CheckReadiness(_ context.Context) error {
	snap := c.Snapshot()
	if snap.State != StateReady {
		return fmt.Errorf("event view is %s", snap.State)
	}
	return nil
}

// Wait blocks until every issued query has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) stop() {
	c.mu.Lock()
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) issueLocked(parent context.Context) {
	if c.inflight != nil {
		c.inflight()
	}
	ctx, cancel := context.WithCancel(parent)
	c.inflight = cancel
	c.gen++

	gen := c.gen
	q := domain.EventQuery{ID: c.eventID, Reading: c.reading}
	requestID := uuid.NewString()

	c.setLocked(Snapshot{
		State:     StateLoading,
		Query:     q,
		RequestID: requestID,
		UpdatedAt: domain.Clock().Now(),
	})
	c.logger.Debug("issuing event query", "request_id", requestID, "reading", q.Reading.String())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.fetch(ctx, gen, q, requestID)
	}()
}

func (c *Controller) fetch(ctx context.Context, gen uint64, q domain.EventQuery, requestID string) {
	start := domain.Clock().Now()
	event, err := c.fetcher.FetchEvent(ctx, q)
	elapsed := domain.Clock().Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.metrics.QueryIssued.WithLabelValues("superseded").Inc()
		return
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// Controller is shutting down.
		return
	}
	c.inflight = nil
	c.metrics.QueryDuration.Observe(elapsed.Seconds())

	snap := Snapshot{
		Query:     q,
		RequestID: requestID,
		UpdatedAt: domain.Clock().Now(),
	}
	if err != nil {
		c.metrics.QueryIssued.WithLabelValues("error").Inc()
		c.logger.Warn("event query failed", "request_id", requestID, "error", err)
		snap.State = StateError
		snap.Err = err
		c.setLocked(snap)
		return
	}

	event = domain.AnnotateDistances(event, q.Reading, c.unit, c.computeMissing)
	c.metrics.QueryIssued.WithLabelValues("ready").Inc()
	c.logger.Debug("event query ready", "request_id", requestID, "duration", elapsed)
	snap.State = StateReady
	snap.Event = &event
	c.setLocked(snap)
}

func (c *Controller) setLocked(s Snapshot) {
	c.snap = s
	c.metrics.ControllerState.Set(float64(s.State))
	for ch := range c.subs {
		offerLatest(ch, s)
	}
}

func offerLatest(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
