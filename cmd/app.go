package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/api"
	"github.com/glundgren93/fahrplan/internal/cache"
	"github.com/glundgren93/fahrplan/internal/favorites"
	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/notify"
	"github.com/glundgren93/fahrplan/internal/places"
	"github.com/glundgren93/fahrplan/internal/planner"
	"github.com/glundgren93/fahrplan/internal/workflow"
)

// app holds the collaborators of one invocation.
type app struct {
	client    *api.Client
	store     *cache.Store
	favorites *favorites.Store
	collector *places.Collector
	planner   *planner.Planner
	notifier  *notify.Notifier
}

func newApp() *app {
	client := api.NewClient(
		api.WithBaseURL(settings.BaseURL),
		api.WithTimeout(settings.Timeout),
		api.WithLogger(logger),
	)
	store := cache.NewStore(settings.CacheDir, logger)
	favs := favorites.New(settings.DataDir, settings.Home, client, logger)
	return &app{
		client:    client,
		store:     store,
		favorites: favs,
		collector: places.NewCollector(favs, client, logger),
		planner:   planner.New(client, store, planner.WithClock(now), planner.WithLogger(logger)),
		notifier:  notify.New(settings.Notifier, logger),
	}
}

// resolvePlace accepts a location id as is and looks anything else up,
// taking the best match.
func (a *app) resolvePlace(ctx context.Context, input string) (model.Place, error) {
	if strings.Contains(input, "@") {
		return model.NewPlace(input), nil
	}
	found, err := a.client.LookupPlaces(ctx, places.Normalize(input))
	if err != nil {
		return model.Place{}, err
	}
	if len(found) == 0 {
		return model.Place{}, fmt.Errorf("no place matches %q", input)
	}
	return found[0], nil
}

// warning returns the title and subtitle of the item shown for err.
func warning(err error) (title, subtitle string) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, planner.ErrInvalidSearch):
		return "Invalid Search", ""
	case errors.Is(err, planner.ErrNoResults):
		return "No Results", ""
	case errors.Is(err, planner.ErrNoCachedData):
		return "No Cached Trips", ""
	case errors.Is(err, favorites.ErrHomeNotFound):
		return "Home not found", ""
	case errors.As(err, &apiErr):
		switch apiErr.Kind {
		case api.KindNetwork:
			return "Network Error", err.Error()
		case api.KindStatus:
			return fmt.Sprintf("Server Error %d", apiErr.StatusCode), err.Error()
		default:
			return "Invalid Response", err.Error()
		}
	default:
		return err.Error(), ""
	}
}

// emit writes the workflow. err replaces the items with a warning item so
// the launcher always receives valid output.
func emit(out io.Writer, w *workflow.Workflow, err error) error {
	if err != nil {
		logger.Warn("invocation failed", "error", err)
		w.WarnEmpty(warning(err))
	}
	return w.Encode(out)
}

func newWorkflow() *workflow.Workflow {
	return workflow.New(settings.AlertIcon)
}

func queryArg(args []string) string {
	return strings.Join(args, " ")
}

// finish reports err in the active output mode.
func finish(cmd *cobra.Command, w *workflow.Workflow, err error) error {
	if jsonOutput {
		return emit(cmd.OutOrStdout(), w, err)
	}
	return err
}
