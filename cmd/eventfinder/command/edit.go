package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// inputFlags are the editable event fields shared by create and update.
type inputFlags struct {
	title       string
	description string
	start       string
	end         string
	locations   []string
	images      []string
	tags        []string
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "event title")
	fs.StringVar(&f.description, "description", "", "event description")
	fs.StringVar(&f.start, "start", "", "start time (RFC 3339)")
	fs.StringVar(&f.end, "end", "", "end time (RFC 3339)")
	fs.StringArrayVar(&f.locations, "location", nil,
		`venue as "name;street;city;state;zipcode" or "name;street;street2;city;state;zipcode" (repeatable)`)
	fs.StringArrayVar(&f.images, "image", nil, "image URL (repeatable)")
	fs.StringArrayVar(&f.tags, "tag", nil, "tag (repeatable)")
}

// apply copies every flag the user set onto in. Lists replace the existing
// values rather than appending to them.
func (f *inputFlags) apply(fs *pflag.FlagSet, in *domain.EventInput) error {
	if fs.Changed("title") {
		in.Title = f.title
	}
	if fs.Changed("description") {
		in.Description = f.description
	}
	if fs.Changed("start") {
		t, err := time.Parse(time.RFC3339, f.start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		in.Start = t
	}
	if fs.Changed("end") {
		t, err := time.Parse(time.RFC3339, f.end)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		in.End = t
	}
	if fs.Changed("location") {
		in.Locations = in.Locations[:0:0]
		for _, s := range f.locations {
			loc, err := parseLocation(s)
			if err != nil {
				return err
			}
			in.Locations = append(in.Locations, loc)
		}
	}
	if fs.Changed("image") {
		in.ImageURLs = append([]string(nil), f.images...)
	}
	if fs.Changed("tag") {
		in.Tags = append([]string(nil), f.tags...)
	}
	return nil
}

func parseLocation(s string) (domain.LocationInput, error) {
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 5:
		return domain.LocationInput{
			Name: parts[0], StreetAddress: parts[1], City: parts[2], State: parts[3], Zipcode: parts[4],
		}, nil
	case 6:
		return domain.LocationInput{
			Name: parts[0], StreetAddress: parts[1], StreetAddress2: parts[2], City: parts[3], State: parts[4], Zipcode: parts[5],
		}, nil
	default:
		return domain.LocationInput{}, fmt.Errorf("invalid --location %q: want 5 or 6 ';'-separated fields", s)
	}
}

func newCreateCmd(load func() (*app, error)) *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event (requires EVENTS_API_TOKEN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in domain.EventInput
			if err := flags.apply(cmd.Flags(), &in); err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return err
			}

			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			e, err := a.events.CreateEvent(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create event: %w", err)
			}
			a.logger.Info("event created", "event_id", e.ID)
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newUpdateCmd(load func() (*app, error)) *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Edit an event you created (requires EVENTS_API_TOKEN)",
		Long: `update loads the event, applies only the flags you pass, and saves it.
It refuses events created by someone else.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			id := args[0]
			current, err := a.events.GetEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("load event %s: %w", id, err)
			}
			in := domain.InputFromEvent(current)
			if err := flags.apply(cmd.Flags(), &in); err != nil {
				return err
			}

			e, err := a.events.UpdateEvent(ctx, id, in)
			if err != nil {
				return fmt.Errorf("update event %s: %w", id, err)
			}
			a.logger.Info("event updated", "event_id", e.ID)
			printEvent(cmd.OutOrStdout(), e)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
