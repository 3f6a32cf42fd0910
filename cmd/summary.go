package cmd

import (
	"fmt"
	"strings"
	"time"

	"conference-clipper/application/pipeline"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	summaryMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	summaryErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	summaryPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const (
	roomColumnWidth   = 24
	stateColumnWidth  = 8
	talksColumnWidth  = 10
	errorColumnWidth  = 60
	elapsedRoundingTo = time.Second
)

// RenderSummary formats the outcome of a run as a bordered table
func RenderSummary(summary *pipeline.Summary) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		cell(summaryMutedStyle, roomColumnWidth, "ROOM"),
		cell(summaryMutedStyle, stateColumnWidth, "STATE"),
		cell(summaryMutedStyle, talksColumnWidth, "UPLOADED"),
		cell(summaryMutedStyle, errorColumnWidth, "ERROR"),
	)

	lines := []string{header}
	for _, room := range summary.Rooms {
		stateStyle := summaryOKStyle
		errText := ""
		if room.State != pipeline.StateDone {
			stateStyle = summaryErrorStyle
		}
		if room.Err != nil {
			errText = room.Err.Error()
		} else if n := room.Rejected(); n > 0 {
			errText = fmt.Sprintf("%d talk(s) rejected", n)
		}

		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			cell(lipgloss.NewStyle(), roomColumnWidth, room.Room),
			cell(stateStyle, stateColumnWidth, string(room.State)),
			cell(lipgloss.NewStyle(), talksColumnWidth, fmt.Sprintf("%d/%d", room.Uploaded(), len(room.Talks))),
			cell(summaryErrorStyle, errorColumnWidth, errText),
		))
	}

	title := summaryTitleStyle.Render(fmt.Sprintf("Run summary (%s)", summary.Elapsed.Round(elapsedRoundingTo)))
	footer := summaryOKStyle.Render(fmt.Sprintf("%d room(s), %d video(s) uploaded", len(summary.Rooms), summary.Uploaded()))
	if failed := summary.Failed(); failed > 0 {
		footer = summaryErrorStyle.Render(fmt.Sprintf("%d of %d room(s) failed, %d video(s) uploaded", failed, len(summary.Rooms), summary.Uploaded()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summaryPanelStyle.Render(strings.Join(lines, "\n")),
		footer,
	)
}

// cell renders s truncated and padded to width
func cell(style lipgloss.Style, width int, s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) > width-1 {
		s = truncateRunes(s, width-1)
	}
	return style.Width(width).Render(s)
}

func truncateRunes(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
