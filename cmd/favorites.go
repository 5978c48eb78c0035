package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/places"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved places",
	Long: `Saved places live in places.txt in the data directory, one place id per
line. The home place is resolved from $home and remembered in home.txt.

Examples:
  fahrplan favorites list
  fahrplan favorites add "Hamburg Hbf"
  fahrplan favorites remove "A=1@O=Hamburg Hbf@X=10006909@Y=53552733@L=8002549@"
  fahrplan favorites home`,
	Aliases: []string{"fav", "f"},
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved places",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <place>",
	Short: "Save a place (id or name)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <place-id>",
	Short:   "Remove a saved place",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runFavoritesRemove,
}

var favoritesHomeCmd = &cobra.Command{
	Use:   "home",
	Short: "Resolve the home place",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesHome,
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd, favoritesHomeCmd)
	rootCmd.AddCommand(favoritesCmd)
}

type favoriteResult struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	saved := newApp().favorites.List()
	if jsonOutput {
		return format.JSON(saved)
	}
	format.Places(cmd.OutOrStdout(), &places.Result{Places: saved, Favorites: saved})
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	a := newApp()
	place, err := a.resolvePlace(cmd.Context(), queryArg(args))
	if err != nil {
		return fmt.Errorf("resolving place: %w", err)
	}
	added, err := savePlace(a, place.ID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return format.JSON(favoriteResult{ID: place.ID, Changed: added})
	}
	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", place.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already saved\n", place.Name)
	}
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	id := queryArg(args)
	removed, err := removePlace(newApp(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return format.JSON(favoriteResult{ID: id, Changed: removed})
	}
	if removed {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Removed")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Place was not saved")
	}
	return nil
}

func runFavoritesHome(cmd *cobra.Command, args []string) error {
	home, err := newApp().favorites.Home(cmd.Context())
	if err != nil {
		return fmt.Errorf("resolving home: %w", err)
	}
	if jsonOutput {
		return format.JSON(home)
	}
	format.Places(cmd.OutOrStdout(), &places.Result{Places: []model.Place{home}, Home: &home})
	return nil
}

// savePlace stores id and notifies when it was new.
func savePlace(a *app, id string) (bool, error) {
	added, err := a.favorites.Add(id)
	if err != nil {
		return false, fmt.Errorf("saving place: %w", err)
	}
	if added {
		a.notifier.Send("Place saved")
	}
	return added, nil
}

// removePlace deletes id and notifies when it was saved.
func removePlace(a *app, id string) (bool, error) {
	removed, err := a.favorites.Remove(id)
	if err != nil {
		return false, fmt.Errorf("removing place: %w", err)
	}
	if removed {
		a.notifier.Send("Place removed")
	}
	return removed, nil
}
