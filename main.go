package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"loadwatch/internal/config"
	"loadwatch/internal/logging"
	"loadwatch/internal/metrics"
	"loadwatch/internal/service"
	"loadwatch/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what the commands share once config is loaded
type app struct {
	configPath string
	out        io.Writer

	cfg      *config.Config
	db       *store.DB
	analysis *service.AnalysisService
}

// errFirstRun stops a command after the example config was written
var errFirstRun = errors.New("example config written")

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "loadwatch",
		Short: "Track training load and injury risk (ACWR)",
		Long: `loadwatch keeps your activities in a local database, computes the
acute:chronic workload ratio and classifies the injury risk.
Without a command it opens the dashboard.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         a.withStore(true, a.dashboard),
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $LOADWATCH_HOME/config.json or ~/.loadwatch/config.json)")

	root.AddCommand(
		a.syncCmd(),
		a.importCmd(),
		a.analyzeCmd(),
		a.contextCmd(),
		a.authCmd(),
		a.logoutCmd(),
	)
	return root
}

type runFunc func(ctx context.Context, args []string) error

// withConfig loads the config and logging before fn. The dashboard logs to
// a file because it owns the terminal.
func (a *app) withConfig(logToFile bool, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.out = cmd.OutOrStdout()

		err := a.loadConfig(logToFile)
		if errors.Is(err, errFirstRun) {
			return nil
		}
		if err != nil {
			return err
		}
		return fn(cmd.Context(), args)
	}
}

// withStore is withConfig plus an open database and analysis service
func (a *app) withStore(logToFile bool, fn runFunc) func(*cobra.Command, []string) error {
	return a.withConfig(logToFile, func(ctx context.Context, args []string) error {
		if err := a.openStore(); err != nil {
			return err
		}
		defer a.db.Close()
		return fn(ctx, args)
	})
}

func (a *app) loadConfig(logToFile bool) error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}

	cfg, err := config.LoadFile(path)
	if errors.Is(err, config.ErrNoConfig) {
		if a.configPath != "" {
			return fmt.Errorf("%s: %w", path, err)
		}
		if path, err = config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		fmt.Fprintf(a.out, "Wrote an example config to %s\n\n", path)
		fmt.Fprintln(a.out, "Add your Strava API credentials to sync (https://www.strava.com/settings/api),")
		fmt.Fprintln(a.out, "or load a Garmin export with 'loadwatch import <file>'.")
		return errFirstRun
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	params := logging.SetupParams{LogLevel: cfg.Log.Level, LogFormatJSON: cfg.Log.JSON}
	if logToFile {
		if params.LogFileName, err = cfg.LogPath(); err != nil {
			return err
		}
	}
	logging.Setup(params)

	a.cfg = cfg
	return nil
}

func (a *app) openStore() error {
	dataDir, err := a.cfg.DataDir()
	if err != nil {
		return err
	}
	if a.db, err = store.Open(dataDir); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	summaryPath, err := a.cfg.SummaryPath()
	if err != nil {
		return err
	}
	a.analysis = service.NewAnalysisService(a.db, a.cfg.LoadMode(), summaryPath, log.StandardLogger())
	if tf := a.cfg.Metrics.Textfile; tf != "" {
		a.analysis.ExportMetrics(metrics.NewManager(metrics.Namespace), tf)
	}
	return nil
}
