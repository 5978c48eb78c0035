package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/config"
	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/planner"
	"github.com/glundgren93/fahrplan/internal/timeexpr"
)

var (
	tripsFrom    string
	tripsTo      string
	tripsAt      string
	tripsArrival bool
	tripsPage    string
	tripsLater   bool
	tripsEarlier bool
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Search connections between two places",
	Long: `Search connections on bahn.de. Origin and destination accept place ids or
names (the best match is used). Without them the cached search is reused,
so --at alone changes the time of the last search and --later/--earlier
page through it, merging the new page into the cached connections. Page
flags cannot be combined with --from, --to, --at or --arrival.

Examples:
  fahrplan trips --from "Hamburg Hbf" --to "Saarbrücken Hbf"
  fahrplan trips --from "Hamburg Hbf" --to "München Hbf" --at "18:30" --arrival
  fahrplan trips --at +1h
  fahrplan trips --later
  fahrplan trips --from "Bremen Hbf" --to "Hamburg Hbf" --json`,
	Aliases: []string{"trip", "search", "s"},
	RunE:    runTrips,
}

func init() {
	tripsCmd.Flags().StringVar(&tripsFrom, "from", "", "Origin (place id or name)")
	tripsCmd.Flags().StringVar(&tripsTo, "to", "", "Destination (place id or name)")
	tripsCmd.Flags().StringVar(&tripsAt, "at", "", `Time as RFC 3339 or expression like "18:30", "14.3", "+45m"`)
	tripsCmd.Flags().BoolVar(&tripsArrival, "arrival", false, "Search by arrival instead of departure time")
	tripsCmd.Flags().StringVar(&tripsPage, "page", "", "Page token from a previous result")
	tripsCmd.Flags().BoolVar(&tripsLater, "later", false, "Load later connections of the cached search")
	tripsCmd.Flags().BoolVar(&tripsEarlier, "earlier", false, "Load earlier connections of the cached search")
	tripsCmd.MarkFlagsMutuallyExclusive("page", "later", "earlier")
	rootCmd.AddCommand(tripsCmd)
}

func runTrips(cmd *cobra.Command, args []string) error {
	a := newApp()
	w := newWorkflow()

	snap, err := searchTrips(cmd, a)
	if jsonOutput {
		if err == nil {
			format.TripItems(w, snap.Trips, snap.References, now())
		}
		return emit(cmd.OutOrStdout(), w, err)
	}
	if err != nil {
		return fmt.Errorf("searching trips: %w", err)
	}
	format.Trips(cmd.OutOrStdout(), snap.Trips, now())
	return nil
}

func searchTrips(cmd *cobra.Command, a *app) (*model.Snapshot, error) {
	ctx := cmd.Context()
	params := config.ReadParams(cfg)

	paging := tripsLater || tripsEarlier || tripsPage != ""
	if paging && (tripsFrom != "" || tripsTo != "" || tripsAt != "" || cmd.Flags().Changed("arrival")) {
		return nil, errors.Wrap(planner.ErrInvalidSearch, "--later, --earlier and --page continue the cached search and take no --from, --to, --at or --arrival")
	}

	if tripsFrom != "" {
		origin, err := a.resolvePlace(ctx, tripsFrom)
		if err != nil {
			return nil, fmt.Errorf("resolving origin: %w", err)
		}
		params.OriginID = origin.ID
	}
	if tripsTo != "" {
		dest, err := a.resolvePlace(ctx, tripsTo)
		if err != nil {
			return nil, fmt.Errorf("resolving destination: %w", err)
		}
		params.DestinationID = dest.ID
	}
	if tripsAt != "" {
		params.DateTime = parseAt(tripsAt, now()).Format(time.RFC3339)
	}
	if cmd.Flags().Changed("arrival") {
		arrival := tripsArrival
		params.IsArrival = &arrival
	}

	switch {
	case tripsLater || tripsEarlier:
		snap, err := a.planner.Cached()
		if err != nil {
			return nil, err
		}
		key := model.PageLater
		if tripsEarlier {
			key = model.PageEarlier
		}
		params.Paging = snap.References[key]
		if params.Paging == "" {
			return nil, fmt.Errorf("no %s page available", key)
		}
	case tripsPage != "":
		params.Paging = tripsPage
	}

	req, err := params.Request()
	if err != nil {
		return nil, err
	}
	return a.planner.Search(ctx, req)
}

// parseAt accepts RFC 3339 or a time expression.
func parseAt(s string, current time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return timeexpr.Parse(s, current)
}

