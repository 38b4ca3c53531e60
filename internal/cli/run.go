package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/volleyhq/volley/internal/collection"
	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/internal/history"
	"github.com/volleyhq/volley/internal/load"
	"github.com/volleyhq/volley/internal/metrics"
	"github.com/volleyhq/volley/internal/output"
	"github.com/volleyhq/volley/internal/payload"
	"github.com/volleyhq/volley/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a collection under steady multi-user load",
	Long: `Replay a request collection at a fixed per-user cadence until a global
deadline, then summarize the results.

Every simulated user executes the whole collection once per interval, on
the wall clock: a slow collection pass never delays the next tick. At the
deadline no further ticks start; requests already in flight finish on
their own but only completions recorded before the deadline appear in
the summary.

Examples:
  volley run -f checkout.json -u 10 -i 2 -t 60
  volley run -f checkout.json -u 50 -i 5 -t 300 --stagger --report
  volley run -f checkout.json -u 10 -i 2 -t 60 -d bodies.json --history volley.db
  volley run -f checkout.json -u 10 -i 2 -t 60 --live`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, verrs := buildRunConfig(cmd)
		if len(verrs) > 0 {
			fmt.Fprintln(os.Stderr, "Run configuration errors:")
			for _, verr := range verrs {
				fmt.Fprintf(os.Stderr, "  - %s\n", verr.Error())
			}
			os.Exit(1)
		}

		if err := executeRun(cfg); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	registerRunFlags(runCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "collection file to replay (required)")
	cmd.Flags().IntP("users", "u", 0, "number of simulated users (required)")
	cmd.Flags().IntP("interval", "i", 0, "seconds between each user's ticks (required)")
	cmd.Flags().IntP("total", "t", 0, "total run length in seconds (required)")
	cmd.Flags().Bool("stagger", false, "delay each user's first tick by a random offset within one interval")
	cmd.Flags().Bool("report", false, "print the summary report at the deadline")
	cmd.Flags().StringP("data", "d", "", "request body data file for per-user parameterization")
	cmd.Flags().Int("timeout", 0, "per-request timeout in seconds (default 30)")
	cmd.Flags().String("history", "", "SQLite file to record this run in")
	cmd.Flags().Bool("live", false, "render a live dashboard instead of progress lines")
	cmd.Flags().StringP("output", "o", "", "write the summary report as JSON to this file")
	cmd.Flags().Int64("seed", 0, "seed for stagger offsets (0 seeds from the clock)")
}

// buildRunConfig assembles the run configuration from flags, environment,
// and config file, and returns every validation error found.
func buildRunConfig(cmd *cobra.Command) (config.RunConfig, []config.ValidationError) {
	var verrs []config.ValidationError

	interval, err := resolveSeconds(cmd, "interval")
	if err != nil {
		verrs = append(verrs, config.ValidationError{Field: "interval", Message: err.Error()})
	}
	total, err := resolveSeconds(cmd, "total")
	if err != nil {
		verrs = append(verrs, config.ValidationError{Field: "total", Message: err.Error()})
	}
	timeout, err := resolveSeconds(cmd, "timeout")
	if err != nil {
		verrs = append(verrs, config.ValidationError{Field: "timeout", Message: err.Error()})
	}

	cfg := config.RunConfig{
		File:      resolveString(cmd, "file"),
		Users:     resolveInt(cmd, "users"),
		Interval:  interval,
		Total:     total,
		Stagger:   resolveBool(cmd, "stagger"),
		Report:    resolveBool(cmd, "report"),
		DataFile:  resolveString(cmd, "data"),
		Timeout:   timeout,
		HistoryDB: resolveString(cmd, "history"),
		Live:      resolveBool(cmd, "live"),
		Output:    resolveString(cmd, "output"),
		Quiet:     quiet,
		NoColor:   noColor,
		Seed:      resolveInt64(cmd, "seed"),
	}

	return cfg, append(verrs, cfg.Validate()...)
}

// resolveSeconds reads a duration flag given in whole seconds. Environment
// and config file values may use either form: "30" or "30s".
func resolveSeconds(cmd *cobra.Command, name string) (time.Duration, error) {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return config.ParseDuration(viper.GetString(name))
	}
	v, _ := cmd.Flags().GetInt(name)
	return time.Duration(v) * time.Second, nil
}

// executeRun drives one full load-test run: load inputs, schedule the user
// timelines, and summarize at the deadline. Diagnostics are printed here;
// the returned error only signals the exit code.
func executeRun(cfg config.RunConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := output.NewConsole(
		output.WithQuiet(cfg.Quiet),
		output.WithNoColor(cfg.NoColor),
	)

	// Ticks re-read the collection, but an unloadable file should fail the
	// run before any user timeline starts.
	coll, err := collection.Load(cfg.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading collection: %v\n", err)
		return err
	}

	var adapterOpts []load.AdapterOption
	if cfg.DataFile != "" {
		bodies, err := payload.Load(cfg.DataFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading data file: %v\n", err)
			return err
		}
		adapterOpts = append(adapterOpts, load.WithBodies(bodies))
	}

	useLive := cfg.Live && !cfg.Quiet && output.IsTerminal(os.Stdout)
	if !useLive {
		adapterOpts = append(adapterOpts, load.WithObserver(console))
	}

	httpCfg := engine.DefaultHTTPConfig()
	httpCfg.Timeout = cfg.RequestTimeout()
	runner := engine.NewHTTPRunner(httpCfg)

	agg := metrics.New()
	adapter := load.NewAdapter(cfg.File, runner, agg, adapterOpts...)
	sched := load.New(cfg, adapter)

	runID := uuid.NewString()
	console.PrintBanner(cfg, runID, coll.Name)
	startedAt := time.Now()

	var runErr error
	if useLive {
		runErr = runWithDashboard(ctx, sched, agg, cfg, coll.Name)
	} else {
		runErr = sched.Run(ctx)
	}
	if runErr != nil {
		console.PrintRunError(runErr)
		return runErr
	}

	// Snapshot at the deadline: completions that land after this point are
	// deliberately not part of the summary.
	rep := agg.Summarize()

	if cfg.Report {
		console.PrintReport(rep)
	}

	if cfg.Output != "" {
		if err := output.WriteReportJSON(rep, cfg.Output); err != nil {
			console.PrintWarning(fmt.Sprintf("could not write report: %v", err))
		} else {
			console.PrintInfo(fmt.Sprintf("report written to %s", cfg.Output))
		}
	}

	if cfg.HistoryDB != "" {
		saveHistory(console, cfg, runID, coll.Name, startedAt, rep)
	}

	return nil
}

// runWithDashboard runs the scheduler with the live dashboard attached. The
// dashboard only observes the aggregator; quitting it with q aborts the run.
func runWithDashboard(ctx context.Context, sched *load.Scheduler, agg *metrics.Aggregator, cfg config.RunConfig, collectionName string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(tui.NewModel(agg, collectionName, cfg.Users, cfg.Interval, cfg.Total))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Run(ctx)
		// Ends the dashboard when the run stops first, whether at the
		// deadline or on a fatal engine error.
		prog.Quit()
	}()

	final, err := prog.Run()
	if err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("dashboard: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Aborted() {
		cancel()
		<-errCh
		return fmt.Errorf("run aborted")
	}

	return <-errCh
}

// saveHistory records the completed run. History is best effort: failures
// warn but never change the run's outcome.
func saveHistory(console *output.Console, cfg config.RunConfig, runID, collectionName string, startedAt time.Time, rep *metrics.Report) {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		console.PrintWarning(fmt.Sprintf("history unavailable: %v", err))
		return
	}
	defer store.Close()

	if err := store.SaveRun(history.NewRecord(runID, cfg, collectionName, startedAt, rep)); err != nil {
		console.PrintWarning(fmt.Sprintf("could not save run to history: %v", err))
		return
	}
	console.PrintInfo(fmt.Sprintf("run %s saved to %s", runID, cfg.HistoryDB))
}
