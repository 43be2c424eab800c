// Package ipgeo locates the host by its public IP address.
package ipgeo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/location"
)

// DefaultURL is the ip-api.com JSON endpoint.
const DefaultURL = "http://ip-api.com/json/"

// ipAccuracyMeters is the nominal accuracy reported for IP-derived fixes.
const ipAccuracyMeters = 5000

// Platform implements location.Platform against an ip-api.com compatible
// endpoint. It honours the request timeout and serves a cached fix that is
// no older than MaximumAge. High accuracy cannot be provided and is ignored.
type Platform struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.Mutex
	last *domain.Position
}

var _ location.Platform = (*Platform)(nil)

// NewPlatform creates an IP geolocation platform.
func NewPlatform(url string, logger *slog.Logger) *Platform {
	if url == "" {
		url = DefaultURL
	}
	return &Platform{
		url:        url,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (p *Platform) Name() string { return "ip" }

func (p *Platform) GetCurrentPosition(ctx context.Context, onSuccess location.SuccessFunc, onError location.ErrorFunc, opts domain.AcquisitionOptions) {
	if pos, ok := p.cached(opts); ok {
		go onSuccess(pos)
		return
	}

	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		pos, perr := p.lookup(reqCtx)
		if perr != nil {
			onError(perr)
			return
		}
		p.mu.Lock()
		p.last = &pos
		p.mu.Unlock()
		onSuccess(pos)
	}()
}

func (p *Platform) cached(opts domain.AcquisitionOptions) (domain.Position, bool) {
	if opts.MaximumAge <= 0 {
		return domain.Position{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return domain.Position{}, false
	}
	if domain.Clock().Since(p.last.Timestamp) > opts.MaximumAge {
		return domain.Position{}, false
	}
	p.logger.Debug("serving cached ip location", "age", domain.Clock().Since(p.last.Timestamp))
	return *p.last, true
}

func (p *Platform) lookup(ctx context.Context) (domain.Position, *domain.PositionError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return domain.Position{}, unavailable(fmt.Sprintf("create request: %v", err))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Position{}, &domain.PositionError{Code: domain.Timeout, Message: "timeout expired"}
		}
		return domain.Position{}, unavailable(fmt.Sprintf("ip lookup: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Position{}, &domain.PositionError{
			Code:    domain.PermissionDenied,
			Message: fmt.Sprintf("ip lookup refused: status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Position{}, unavailable(fmt.Sprintf("ip lookup: status %d: %s", resp.StatusCode, body))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Position{}, &domain.PositionError{Code: domain.Timeout, Message: "timeout expired"}
		}
		return domain.Position{}, unavailable(fmt.Sprintf("decode response: %v", err))
	}
	if r.Status != "success" {
		return domain.Position{}, unavailable(fmt.Sprintf("ip lookup failed: %s", r.Message))
	}

	p.logger.Debug("ip location resolved", "city", r.City, "region", r.Region)
	return domain.Position{
		Latitude:  r.Lat,
		Longitude: r.Lon,
		Accuracy:  ipAccuracyMeters,
		Timestamp: domain.Clock().Now(),
	}, nil
}

func unavailable(msg string) *domain.PositionError {
	return &domain.PositionError{Code: domain.PositionUnavailable, Message: msg}
}

// ip-api.com response shape.
type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Region  string  `json:"regionName"`
}
