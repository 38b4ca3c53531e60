// Package tui renders the live run dashboard: a progress bar toward the
// deadline, request counters, and global latency percentiles, refreshed by
// polling the aggregator. The dashboard is display-only; the scheduler runs
// independently and the dashboard quits itself when the deadline is reached.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/volleyhq/volley/internal/metrics"
)

const (
	tickInterval = 200 * time.Millisecond

	// maxNameRows bounds the per-request section of the dashboard.
	maxNameRows = 8
)

type tickMsg time.Time

// Model is the bubbletea model for the live dashboard.
type Model struct {
	agg      *metrics.Aggregator
	progress progress.Model

	collection string
	users      int
	interval   time.Duration
	duration   time.Duration

	startTime time.Time
	snap      metrics.Snapshot

	finished bool
	aborted  bool
	width    int
}

// NewModel builds the dashboard for one run.
func NewModel(agg *metrics.Aggregator, collection string, users int, interval, total time.Duration) Model {
	return Model{
		agg:        agg,
		progress:   progress.New(progress.WithDefaultGradient()),
		collection: collection,
		users:      users,
		interval:   interval,
		duration:   total,
		startTime:  time.Now(),
	}
}

// Aborted reports whether the user quit the dashboard before the deadline.
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.aborted = true
			return m, tea.Quit
		}

	case tickMsg:
		m.snap = m.agg.Snapshot()

		elapsed := time.Since(m.startTime)
		pct := float64(elapsed) / float64(m.duration)
		if pct >= 1.0 {
			m.finished = true
			return m, tea.Quit
		}

		cmd := m.progress.SetPercent(pct)
		return m, tea.Batch(cmd, tickCmd())

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.finished || m.aborted {
		return ""
	}

	s := strings.Builder{}

	s.WriteString(titleStyle.Render("volley " + m.collection))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("users: %d | interval: %s | length: %s\n", m.users, m.interval, m.duration))
	s.WriteString(subtle.Render(fmt.Sprintf("elapsed: %s", time.Since(m.startTime).Round(time.Second))))
	s.WriteString("\n\n")

	errLine := fmt.Sprintf("%.1f%%", m.snap.ErrorRate*100)
	if m.snap.ErrorRate > 0.05 {
		errLine = errStyle.Render(errLine)
	} else if m.snap.ErrorRate > 0.01 {
		errLine = warnStyle.Render(errLine)
	}

	leftCol := fmt.Sprintf(
		"Requests: %d\nSuccess:  %d\nFailed:   %d\nErrors:   %s",
		m.snap.Total, m.snap.Success, m.snap.Failed, errLine,
	)

	rightCol := fmt.Sprintf(
		"Latency\n  P50: %d ms\n  P95: %d ms\n  P99: %d ms\n  Max: %d ms",
		m.snap.P50Ms, m.snap.P95Ms, m.snap.P99Ms, m.snap.MaxMs,
	)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		columnStyle.Render(leftCol),
		columnStyle.Render(rightCol),
	))
	s.WriteString("\n\n")

	if len(m.snap.Names) > 0 {
		s.WriteString(labelStyle.Render("Requests"))
		s.WriteString("\n")

		rows := m.snap.Names
		overflow := 0
		if len(rows) > maxNameRows {
			overflow = len(rows) - maxNameRows
			rows = rows[:maxNameRows]
		}
		for _, nc := range rows {
			s.WriteString(fmt.Sprintf("  %-24s %d\n", nc.Name, nc.Count))
		}
		if overflow > 0 {
			s.WriteString(subtle.Render(fmt.Sprintf("  +%d more", overflow)))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.progress.View())
	s.WriteString("\n")
	s.WriteString(subtle.Render("Press q to quit"))

	return s.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
