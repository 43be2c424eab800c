package observability

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/event-finder/internal/domain"
)

// LogSink writes acquisition failures to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report logs the failure at warn level.
func (s *LogSink) Report(ctx context.Context, f domain.AcquisitionFailure) {
	s.logger.WarnContext(ctx, "geolocation acquisition failed",
		"code", f.Code,
		"code_name", f.CodeName,
		"message", f.Message,
		"source", f.Source,
	)
}
