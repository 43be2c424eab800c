package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/event-finder/internal/adapter/httpadapter"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newServeCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve <event-id>",
		Short: "Keep an event view live and serve it over HTTP",
		Long: `serve acquires your location once, keeps the event query in step with
it, and exposes the view on /event and /event/stream. POST /location
re-acquires the location; REACQUIRE_SCHEDULE does the same on a cron
schedule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(cmd.Context(), args[0])
		},
	}
}

func (a *app) serve(parent context.Context, eventID string) error {
	logger := a.logger
	provider := a.newProvider()
	defer provider.Close()
	readings, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	ctrl := a.newController(eventID)
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, ctrl, provider, logger)

	var scheduler *cron.Cron
	if a.cfg.ReacquireSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(a.cfg.ReacquireSchedule, provider.Reacquire); err != nil {
			return fmt.Errorf("schedule reacquire: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start the event view.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx, provider.Reading(), readings); err != nil {
			logger.Error("event view error", "error", err)
		}
	}()
	provider.Start()

	if scheduler != nil {
		scheduler.Start()
		logger.Info("scheduled reacquire enabled", "schedule", a.cfg.ReacquireSchedule)
	}
	logger.Info("serving event view", "addr", a.cfg.HTTPAddr, "event_id", eventID)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("event view did not stop before shutdown timeout")
	}

	logger.Info("shutdown complete")
	return nil
}
