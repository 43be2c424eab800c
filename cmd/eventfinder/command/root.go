// Package command holds the eventfinder cobra command tree.
//
//	eventfinder view <id>              # event detail with distance
//	eventfinder list                   # all events, nearest first
//	eventfinder create --title ...     # requires EVENTS_API_TOKEN
//	eventfinder update <id> --title ...
//	eventfinder export <id>... [-o f]  # iCalendar
//	eventfinder serve <id>             # live view over HTTP and WebSocket
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "eventfinder",
		Short: "Discover events near you",
		Long: `eventfinder talks to an events GraphQL API. Event detail and listings
are annotated with the distance from your current location, which is
acquired once on start from the configured location source (ip, static,
address or none).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (defaults to $CONFIG_FILE)")

	load := func() (*app, error) { return newApp(cfgPath) }
	root.AddCommand(
		newViewCmd(load),
		newListCmd(load),
		newCreateCmd(load),
		newUpdateCmd(load),
		newExportCmd(load),
		newServeCmd(load),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
