package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/volleyhq/volley/internal/history"
	"github.com/volleyhq/volley/internal/metrics"
	"github.com/volleyhq/volley/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and inspect recorded runs",
	Long: `Browse runs recorded with --history.

Examples:
  volley history --db volley.db
  volley history list --db volley.db --limit 5
  volley history show 1b4e28ba-2fa1-4d3b-9f5a-08f6f0e6d9b2 --db volley.db`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeHistoryList(cmd, 20); err != nil {
			os.Exit(1)
		}
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeHistoryList(cmd, resolveInt(cmd, "limit")); err != nil {
			os.Exit(1)
		}
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeHistoryShow(cmd, args[0]); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "SQLite history file (required)")
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

// historyDBPath resolves the history file: the --db flag first, then the
// same history key the run command uses, so one config line serves both.
func historyDBPath(cmd *cobra.Command) string {
	if db := resolveString(cmd, "db"); db != "" {
		return db
	}
	return viper.GetString("history")
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	dbPath := historyDBPath(cmd)
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --db is required (or set history in the config file)")
		return nil, errors.New("missing history db path")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		return nil, err
	}
	return store, nil
}

func executeHistoryList(cmd *cobra.Command, limit int) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		return err
	}

	renderRunList(os.Stdout, runs)
	return nil
}

func executeHistoryShow(cmd *cobra.Command, id string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetRun(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: run %s not found\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
		}
		return err
	}

	renderRunDetail(os.Stdout, noColor, rec)
	return nil
}

// renderRunList prints one line per run.
func renderRunList(w io.Writer, runs []history.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no recorded runs")
		return
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-24s  %5s  %8s  %8s\n",
		"ID", "STARTED", "COLLECTION", "USERS", "LENGTH", "REQUESTS")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-24s  %5d  %8s  %8d\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.CollectionName, 24),
			r.Users,
			time.Duration(r.TotalMs)*time.Millisecond,
			r.Requests)
	}
}

// renderRunDetail prints the run's recorded configuration followed by the
// same summary the run itself printed.
func renderRunDetail(w io.Writer, noColor bool, rec *history.RunRecord) {
	fmt.Fprintf(w, "%-9s %s\n", "run", rec.ID)
	fmt.Fprintf(w, "%-9s %s\n", "started", rec.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(w, "%-9s %s\n", "file", rec.CollectionFile)
	fmt.Fprintf(w, "%-9s %d\n", "users", rec.Users)
	fmt.Fprintf(w, "%-9s %s\n", "interval", time.Duration(rec.IntervalMs)*time.Millisecond)
	fmt.Fprintf(w, "%-9s %s\n", "length", time.Duration(rec.TotalMs)*time.Millisecond)
	if rec.Stagger {
		fmt.Fprintf(w, "%-9s on\n", "stagger")
	}

	console := output.NewConsole(output.WithWriter(w), output.WithNoColor(noColor))
	console.PrintReport(historyReport(rec))
}

// historyReport rebuilds the end-of-run report from a stored record.
func historyReport(rec *history.RunRecord) *metrics.Report {
	return &metrics.Report{
		GeneratedAt: rec.StartedAt.Add(time.Duration(rec.DurationMs) * time.Millisecond),
		DurationMs:  rec.DurationMs,
		Requests:    rec.Sections,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
