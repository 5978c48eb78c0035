package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/config"
	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/workflow"
)

var cachedTrip string

var cachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "Show the connections of the last search",
	Long: `Show the cached connections of the last search without contacting the
backend. With --trip (or $tripId) the stops of one connection are shown;
an unknown id falls back to the list.

Examples:
  fahrplan cached
  fahrplan cached --trip "¶HKI¶T$A=1@O=Hamburg Hbf@..."
  fahrplan cached --json`,
	Aliases: []string{"last", "c"},
	RunE:    runCached,
}

func init() {
	cachedCmd.Flags().StringVar(&cachedTrip, "trip", "", "Connection id to show in detail")
	rootCmd.AddCommand(cachedCmd)
}

func runCached(cmd *cobra.Command, args []string) error {
	a := newApp()
	params := config.ReadParams(cfg)
	if cachedTrip != "" {
		params.TripID = cachedTrip
	}

	snap, err := a.planner.Cached()
	if jsonOutput {
		w := newWorkflow()
		if err == nil {
			cachedItems(w, snap, params)
		}
		return emit(cmd.OutOrStdout(), w, err)
	}
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	if trip, ok := selectedTrip(snap, params.TripID); ok {
		format.TripDetail(cmd.OutOrStdout(), trip)
		return nil
	}
	format.Trips(cmd.OutOrStdout(), snap.Trips, now())
	return nil
}

func selectedTrip(snap *model.Snapshot, id string) (model.Trip, bool) {
	if id == "" {
		return model.Trip{}, false
	}
	return model.FindTrip(snap.Trips, id)
}

// cachedItems shows the selected trip in detail, or the whole list.
func cachedItems(w *workflow.Workflow, snap *model.Snapshot, params config.Params) {
	if trip, ok := selectedTrip(snap, params.TripID); ok {
		format.TripDetailItems(w, trip, params.TripLabel)
		return
	}
	format.TripItems(w, snap.Trips, snap.References, now())
}
