package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInk    = lipgloss.Color("#E5E9F0")
	colorDim    = lipgloss.Color("#7A8291")
	colorAccent = lipgloss.Color("#88C0D0")
	colorWarn   = lipgloss.Color("#EBCB8B")

	labelStyle = lipgloss.NewStyle().Foreground(colorAccent)
	valueStyle = lipgloss.NewStyle().Foreground(colorInk).Bold(true)
	ruleStyle  = lipgloss.NewStyle().Foreground(colorDim)
	noteStyle  = lipgloss.NewStyle().Foreground(colorWarn)
)

type summaryRow struct {
	Label string
	Value string
}

// renderSummary lays rows out as an aligned two-column table.
func renderSummary(rows []summaryRow) string {
	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := ruleStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s",
			labelStyle.Render(padRight(row.Label, labelWidth)),
			valueStyle.Render(padRight(row.Value, valueWidth))))
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
