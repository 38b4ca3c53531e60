// Package output renders volley's console surface: the run banner, per-tick
// progress lines, and the end-of-run summary report.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/metrics"
)

const bannerWidth = 56

// Console writes human-oriented output for a run. All methods are safe for
// concurrent use; user timelines report ticks from their own goroutines.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	scheme  *ColorScheme
	noColor bool
	quiet   bool

	mu sync.Mutex
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithWriter directs normal output to w instead of stdout.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) { c.out = w }
}

// WithErrWriter directs warnings and errors to w instead of stderr.
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(c *Console) { c.errOut = w }
}

// WithQuiet suppresses the banner and per-tick progress lines.
func WithQuiet(quiet bool) ConsoleOption {
	return func(c *Console) { c.quiet = quiet }
}

// WithNoColor forces colors off regardless of terminal detection.
func WithNoColor(noColor bool) ConsoleOption {
	return func(c *Console) { c.noColor = noColor }
}

// NewConsole creates a console. Colors are enabled only when the output is
// a terminal that supports them, honoring NO_COLOR and FORCE_COLOR.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.noColor && !colorsEnabled(c.out) {
		c.noColor = true
	}
	if c.noColor {
		c.scheme = NoColorScheme()
	} else {
		c.scheme = DefaultColorScheme()
	}

	return c
}

// NoColor reports whether color output is disabled.
func (c *Console) NoColor() bool {
	return c.noColor
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorsEnabled checks whether colored output should be produced for w.
func colorsEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if !IsTerminal(w) {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}
	return true
}

// PrintBanner prints the run header: what is being replayed, by how many
// users, at what cadence, and for how long.
func (c *Console) PrintBanner(cfg config.RunConfig, runID, collectionName string) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rule := strings.Repeat("━", bannerWidth)

	fmt.Fprintln(c.out, c.scheme.Title.Sprint(rule))
	fmt.Fprintf(c.out, "%s %s\n",
		c.scheme.Title.Sprint("volley"),
		c.scheme.Highlight.Sprint(collectionName))
	fmt.Fprintln(c.out, c.scheme.Title.Sprint(rule))

	c.bannerRow("run", runID)
	c.bannerRow("file", cfg.File)
	c.bannerRow("users", fmt.Sprintf("%d", cfg.Users))
	c.bannerRow("interval", formatDuration(cfg.Interval))
	c.bannerRow("length", formatDuration(cfg.Total))
	c.bannerRow("stagger", onOff(cfg.Stagger))
	c.bannerRow("report", onOff(cfg.Report))
	if cfg.DataFile != "" {
		c.bannerRow("data", cfg.DataFile)
	}
	c.bannerRow("timeout", formatDuration(cfg.RequestTimeout()))
	fmt.Fprintln(c.out)
}

func (c *Console) bannerRow(label, value string) {
	fmt.Fprintf(c.out, "  %s %s\n",
		c.scheme.Label.Sprintf("%-9s", label+":"),
		c.scheme.Value.Sprint(value))
}

// TickCompleted prints one progress line per completed tick. It has the
// shape the scheduler's observer expects.
func (c *Console) TickCompleted(userIndex int, tick int64, executions int, elapsed time.Duration) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, c.scheme.Dim.Sprintf("[%s] user %d tick %d | %d requests",
		formatDuration(elapsed), userIndex, tick, executions))
}

// PrintReport renders the end-of-run summary: one section per request name
// with latency stats, percentiles, and the status-code histogram. A report
// with no sections is still rendered; the run simply completed no requests.
func (c *Console) PrintReport(rep *metrics.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rule := strings.Repeat("━", bannerWidth)

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.scheme.Title.Sprint(rule))
	fmt.Fprintf(c.out, "%s %s\n",
		c.scheme.Title.Sprint("Summary"),
		c.scheme.Dim.Sprintf("%d requests in %s",
			rep.TotalCount(), formatDuration(time.Duration(rep.DurationMs)*time.Millisecond)))
	fmt.Fprintln(c.out, c.scheme.Title.Sprint(rule))

	if len(rep.Requests) == 0 {
		fmt.Fprintln(c.out, c.scheme.Dim.Sprint("  no requests completed before the deadline"))
		return
	}

	for _, req := range rep.Requests {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, c.scheme.Highlight.Sprint(req.Name))
		fmt.Fprintf(c.out, "  %s %d\n",
			c.scheme.Label.Sprintf("%-13s", "requests:"), req.Count)
		fmt.Fprintf(c.out, "  %s avg %s   min %s   max %s\n",
			c.scheme.Label.Sprintf("%-13s", "latency:"),
			formatMs(req.AvgMs), formatMs(req.MinMs), formatMs(req.MaxMs))
		fmt.Fprintf(c.out, "  %s p50 %s   p90 %s   p95 %s   p99 %s\n",
			c.scheme.Label.Sprintf("%-13s", "percentiles:"),
			formatMs(req.P50Ms), formatMs(req.P90Ms), formatMs(req.P95Ms), formatMs(req.P99Ms))

		for _, cc := range req.Codes {
			icon := ErrorIcon(c.noColor)
			if cc.Success {
				icon = SuccessIcon(c.noColor)
			}
			fmt.Fprintf(c.out, "  %s %s × %d\n",
				icon,
				c.scheme.StatusColor(cc.Code).Sprintf("%d", cc.Code),
				cc.Count)
		}
	}
}

// PrintRunError reports a fatal mid-run failure.
func (c *Console) PrintRunError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.errOut, "%s %s\n",
		ErrorIcon(c.noColor),
		c.scheme.Error.Sprintf("run failed: %v", err))
}

// PrintWarning reports a non-fatal problem, such as a history save failure.
func (c *Console) PrintWarning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.errOut, "%s %s\n", WarningIcon(c.noColor), msg)
}

// PrintInfo prints an informational line, such as where a report was written.
func (c *Console) PrintInfo(msg string) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s %s\n", InfoIcon(c.noColor), msg)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// formatMs formats a millisecond latency value.
func formatMs(ms int64) string {
	return fmt.Sprintf("%dms", ms)
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
}
