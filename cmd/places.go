package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/config"
	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/places"
	"github.com/glundgren93/fahrplan/internal/workflow"
)

var placesFrom string

var placesCmd = &cobra.Command{
	Use:   "places [query]",
	Short: "List favorites, home and matching places",
	Long: `List saved places and home, filtered by the query. Queries longer than
five characters also search bahn.de for stations and addresses.

Without --from the places are origin candidates; with --from (or $SOID)
they are destination candidates and the origin itself is left out.

Examples:
  fahrplan places
  fahrplan places "Hamburg Hbf"
  fahrplan places --from "Hamburg Hbf" münchen
  fahrplan places hamburg --json`,
	Aliases: []string{"place", "p"},
	RunE:    runPlaces,
}

func init() {
	placesCmd.Flags().StringVar(&placesFrom, "from", "", "Chosen origin (place id or name)")
	rootCmd.AddCommand(placesCmd)
}

func runPlaces(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := newApp()

	originID := config.ReadParams(cfg).OriginID
	if placesFrom != "" {
		origin, err := a.resolvePlace(ctx, placesFrom)
		if err != nil {
			return finish(cmd, newWorkflow(), fmt.Errorf("resolving origin: %w", err))
		}
		originID = origin.ID
	}

	w := newWorkflow()
	res, err := collectPlaces(ctx, a, w, queryArg(args), originID)
	if jsonOutput {
		return emit(cmd.OutOrStdout(), w, err)
	}
	if err != nil {
		return fmt.Errorf("listing places: %w", err)
	}
	format.Places(cmd.OutOrStdout(), res)
	return nil
}

// collectPlaces gathers the candidates and adds their items to w.
func collectPlaces(ctx context.Context, a *app, w *workflow.Workflow, query, originID string) (*places.Result, error) {
	res, err := a.collector.Collect(ctx, query, originID)
	if err != nil {
		return nil, err
	}
	format.PlaceItems(w, res)
	if w.Len() == 0 {
		w.WarnEmpty("No Results", "")
	}
	return res, nil
}
