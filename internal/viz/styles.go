package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	statusDone    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// Separator is a muted horizontal rule of the given width.
func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return subtle.Render(left + " ◆ " + right)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
