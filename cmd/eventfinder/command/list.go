package command

import (
	"fmt"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/spf13/cobra"
)

func newListCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			provider := a.newProvider()
			defer provider.Close()
			reading := awaitReading(ctx, provider, a.acquisitionWindow(provider))

			events, err := a.events.ListEvents(ctx, reading)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}
			for i := range events {
				events[i] = domain.AnnotateDistances(events[i], reading, a.cfg.DistanceUnit, a.cfg.DistanceFallback)
			}
			sortByDistance(events)

			out := cmd.OutOrStdout()
			printLocation(out, reading, a.placeName(ctx, reading))
			fmt.Fprintln(out)
			return printEventTable(out, events)
		},
	}
}
