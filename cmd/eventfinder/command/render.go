package command

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
)

const timeLayout = "Mon Jan 2 2006, 3:04 PM"

func printEvent(w io.Writer, e domain.Event) {
	fmt.Fprintln(w, e.Title)
	fmt.Fprintf(w, "  %s - %s\n", e.Start.Local().Format(timeLayout), e.End.Local().Format(timeLayout))
	for _, loc := range e.Locations {
		fmt.Fprintf(w, "  @ %s", loc.Name)
		if addr := loc.Address(); addr != "" {
			fmt.Fprintf(w, ", %s", addr)
		}
		if loc.Distance != nil {
			fmt.Fprintf(w, " (%s away)", loc.Distance.Label(1))
		}
		fmt.Fprintln(w)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(e.Tags, ", "))
	}
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", e.Description)
	}
}

func printLocation(w io.Writer, r domain.Reading, place string) {
	switch {
	case r.Absent():
		fmt.Fprintln(w, "location unknown; distances unavailable")
	case place != "":
		fmt.Fprintf(w, "near %s (%s)\n", place, r)
	default:
		fmt.Fprintf(w, "near %s\n", r)
	}
}

func printEventTable(w io.Writer, events []domain.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTARTS\tNEIGHBORHOOD\tDISTANCE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Title, e.Start.Local().Format(time.DateTime), e.Neighborhood("-"), distanceLabel(e))
	}
	return tw.Flush()
}

func distanceLabel(e domain.Event) string {
	if loc, ok := e.PrimaryLocation(); ok && loc.Distance != nil {
		return loc.Distance.Label(1)
	}
	return "-"
}

// sortByDistance orders events nearest first. Events without a distance
// keep their relative order after the located ones.
func sortByDistance(events []domain.Event) {
	dist := func(e domain.Event) float64 {
		if loc, ok := e.PrimaryLocation(); ok && loc.Distance != nil {
			return loc.Distance.Distance
		}
		return math.Inf(1)
	}
	sort.SliceStable(events, func(i, j int) bool { return dist(events[i]) < dist(events[j]) })
}
