package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glundgren93/fahrplan/internal/config"
)

var (
	jsonOutput bool
	debugLog   bool
	cacheDir   string
	dataDir    string
	baseURL    string

	cfg      *viper.Viper
	settings *config.Settings
	logger   = slog.Default()
	// now is replaced in tests.
	now = time.Now
)

// flagKeys binds flags to configuration keys so a flag wins over the
// environment.
var flagKeys = map[string]string{
	"debug":     config.KeyDebug,
	"cache-dir": config.KeyCacheDir,
	"data-dir":  config.KeyDataDir,
	"base-url":  config.KeyBaseURL,
}

var rootCmd = &cobra.Command{
	Use:   "fahrplan",
	Short: "Deutsche Bahn journey planner for the terminal and launcher workflows",
	Long: `fahrplan — search train connections on bahn.de.

Pick places, parse short time expressions like "18:30", "14.3" or "+45m",
search connections and page through earlier and later results. The last
search is cached so paging and the trip detail view work without refetching.

With --json every command prints launcher script filter items instead of
colored text.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output launcher items as JSON")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Log debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory of the trip cache (default $alfred_workflow_cache)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory of places.txt and home.txt (default $FAHRPLAN_DATA_DIR or .)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (default $FAHRPLAN_BASE_URL)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg = config.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := cfg.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	var err error
	settings, err = config.Load(cfg)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if settings.Debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("request_id", uuid.NewString()))
	slog.SetDefault(logger)
	logger.Debug("invocation", slog.String("command", cmd.CommandPath()), slog.Any("args", args))
	return nil
}
