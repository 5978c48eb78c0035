package cmd

import (
	"github.com/spf13/cobra"

	"github.com/glundgren93/fahrplan/internal/format"
	"github.com/glundgren93/fahrplan/internal/timeexpr"
)

var timeCmd = &cobra.Command{
	Use:   "time [expression]",
	Short: "Parse a time expression",
	Long: `Turn a short time expression into an absolute time.

  14.3     14 March, next year if already past
  18:30    today at 18:30, tomorrow if already past
  +45m     45 minutes from now (units m, h, d; minutes by default)

Parts combine: "14.3 8:15 +1h".

Examples:
  fahrplan time 18:30
  fahrplan time "24.12 16:00"
  fahrplan time +2h --json`,
	Aliases: []string{"at", "t"},
	RunE:    runTime,
}

func init() {
	rootCmd.AddCommand(timeCmd)
}

func runTime(cmd *cobra.Command, args []string) error {
	current := now()
	t := timeexpr.Parse(queryArg(args), current)
	if jsonOutput {
		w := newWorkflow()
		format.TimeItem(w, t, current)
		return emit(cmd.OutOrStdout(), w, nil)
	}
	format.Time(cmd.OutOrStdout(), t, current)
	return nil
}
