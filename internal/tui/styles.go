package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorError   = lipgloss.Color("#FF5F87")
	colorWarning = lipgloss.Color("#FFAF00")
	colorSubtle  = lipgloss.Color("241")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	subtle     = lipgloss.NewStyle().Foreground(colorSubtle)

	columnStyle = lipgloss.NewStyle().Width(30)
)
