package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/config"
	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/timeexpr"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow [query]",
	Short: "Run the launcher step selected by $mode or $action",
	Long: `Entry point for launcher script filters and actions. The step is chosen
by the environment, the query is the launcher input:

  mode=setPlace      list places ($SOID set: pick the destination)
  mode=setTime       parse the query as a time expression
  mode=searchTrips   search with $SOID, $ZOID, $dateTime, $isArrival, $paging
  mode=cachedTrips   show the last result, or trip $tripId in detail
  action=savePlace   save the place id given as query
  action=removePlace remove the place id given as query

Modes always print script filter JSON; failures become a warning item.`,
	Aliases: []string{"wf"},
	RunE:    runWorkflow,
}

func init() {
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	params := config.ReadParams(cfg)
	query := queryArg(args)
	a := newApp()

	if params.Mode == "" {
		switch params.Action {
		case format.ActionSavePlace:
			_, err := savePlace(a, query)
			return err
		case format.ActionRemovePlace:
			_, err := removePlace(a, query)
			return err
		case "":
			return errors.New("neither mode nor action set")
		default:
			logger.Warn("invalid action", "action", params.Action)
			return nil
		}
	}

	logger.Debug("workflow step", "mode", params.Mode)
	w := newWorkflow()
	var err error
	switch params.Mode {
	case format.ModeSetPlace:
		_, err = collectPlaces(ctx, a, w, query, params.OriginID)
	case format.ModeSetTime:
		current := now()
		format.TimeItem(w, timeexpr.Parse(query, current), current)
	case format.ModeCachedTrips:
		snap, cacheErr := a.planner.Cached()
		if err = cacheErr; err == nil {
			cachedItems(w, snap, params)
		}
	case format.ModeSearchTrips:
		req, reqErr := params.Request()
		if err = reqErr; err != nil {
			break
		}
		snap, searchErr := a.planner.Search(ctx, req)
		if err = searchErr; err == nil {
			format.TripItems(w, snap.Trips, snap.References, now())
		}
	default:
		w.WarnEmpty("Invalid Mode: "+params.Mode, "")
	}
	return emit(cmd.OutOrStdout(), w, err)
}
