package command

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/event-finder/internal/adapter/ics"
	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/spf13/cobra"
)

func newExportCmd(load func() (*app, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <event-id>...",
		Short: "Export events as an iCalendar file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			provider := a.newProvider()
			defer provider.Close()
			reading := awaitReading(ctx, provider, a.acquisitionWindow(provider))

			events := make([]domain.Event, 0, len(args))
			for _, id := range args {
				e, err := a.events.FetchEvent(ctx, domain.EventQuery{ID: id, Reading: reading})
				if err != nil {
					return fmt.Errorf("fetch event %s: %w", id, err)
				}
				events = append(events, domain.AnnotateDistances(e, reading, a.cfg.DistanceUnit, a.cfg.DistanceFallback))
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := ics.Write(w, ics.Options{EventURL: a.cfg.EventURLTemplate}, events...); err != nil {
				return err
			}
			a.logger.Info("calendar exported", "events", len(events), "output", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
