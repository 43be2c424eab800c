package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/query"
	"github.com/spf13/cobra"
)

func newViewCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "view <event-id>",
		Short: "Show one event with its distance from you",
		Long: `view loads the event immediately, then loads it again with your
coordinates once the location source answers. It waits at most the
acquisition timeout for a fix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()
			return a.view(cmd.Context(), cmd, args[0])
		},
	}
}

func (a *app) view(ctx context.Context, cmd *cobra.Command, eventID string) error {
	provider := a.newProvider()
	defer provider.Close()
	readings, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	ctrl := a.newController(eventID)
	snaps, stopSnaps := ctrl.Subscribe()
	defer stopSnaps()

	window := a.acquisitionWindow(provider)
	ctx, cancel := context.WithTimeout(ctx, window+a.cfg.EventsAPITimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx, provider.Reading(), readings)
	}()
	defer func() { cancel(); <-done }()
	provider.Start()

	snap, err := settle(ctx, snaps, domain.Clock().After(window))
	if err != nil {
		return err
	}
	if snap.State == query.StateError {
		a.logger.Error("event query failed", "event_id", eventID, "request_id", snap.RequestID, "error", snap.Err)
		return fmt.Errorf("event %s could not be loaded: %w", eventID, snap.Err)
	}

	out := cmd.OutOrStdout()
	reading := snap.Query.Reading
	printLocation(out, reading, a.placeName(ctx, reading))
	fmt.Fprintln(out)
	printEvent(out, *snap.Event)
	return nil
}

// settle consumes controller snapshots until a query has settled with the
// user's coordinates, or has settled and the acquisition window has closed.
func settle(ctx context.Context, snaps <-chan query.Snapshot, window <-chan time.Time) (query.Snapshot, error) {
	var last query.Snapshot
	closed := false
	for {
		select {
		case s, ok := <-snaps:
			if !ok {
				return last, errors.New("event view closed")
			}
			last = s
		case <-window:
			closed = true
			window = nil
		case <-ctx.Done():
			return last, fmt.Errorf("waiting for event: %w", ctx.Err())
		}
		settled := last.State == query.StateReady || last.State == query.StateError
		if settled && (closed || !last.Query.Reading.Absent()) {
			return last, nil
		}
	}
}
