package internal

import (
	"fmt"
	"strings"
	"time"

	"countdown_tui/internal/countdown"
	"countdown_tui/internal/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	tipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	presetItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("57")).
			Padding(0, 2).
			MarginRight(1)

	presetCursorStyle = presetItemStyle.
				Background(lipgloss.Color("170")).
				Bold(true)

	presetChosenStyle = presetItemStyle.
				Underline(true)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("57")).
			Padding(0, 3).
			MarginRight(4)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("232")).
			Background(lipgloss.Color("220")).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Countdown Timer"))
	sb.WriteString("\n\n")
	sb.WriteString(tipStyle.Render("Tips: pick a time below and press enter to choose it"))
	sb.WriteString("\n\n")

	for i := range m.Rows {
		sb.WriteString(m.presetRowView(i))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.countdownView())
	sb.WriteString("\n\n")
	sb.WriteString(m.buttonsView())
	sb.WriteString("\n\n")

	if m.Toast != "" {
		sb.WriteString(toastStyle.Render(m.Toast))
		sb.WriteString("\n\n")
	}

	sb.WriteString(helpStyle.Render("Move: arrows/hjkl | Choose: Enter | Start/Pause: Space | Reset: r | History: v | Quit: q"))

	return sb.String()
}

func (m *Model) presetRowView(row int) string {
	items := make([]string, 0, len(m.Rows[row]))
	for col, p := range m.Rows[row] {
		style := presetItemStyle
		switch {
		case row == m.RowIndex && col == m.ColIndex:
			style = presetCursorStyle
		case p.Label == m.State.SelectedLabel:
			style = presetChosenStyle
		}
		items = append(items, style.Render(p.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m *Model) countdownView() string {
	s := m.State
	if s.SelectedLabel == "" {
		return boxStyle.Width(40).Render(inactiveStyle.Render("No time selected"))
	}

	// until the first tick only the hour digit is set
	timeStr := s.Display()
	if s.MinutesDisplay == "" || s.SecondsDisplay == "" {
		timeStr = formatDuration(time.Duration(s.RemainingSeconds) * time.Second)
	}
	if s.Status == countdown.StatusRunning {
		timeStr = timerRunningStyle.Render(timeStr)
	} else {
		timeStr = timerDisplayStyle.Render(timeStr)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("selected time: %s\n\n", s.SelectedLabel))
	sb.WriteString(timeStr)
	sb.WriteString("\n\n")
	sb.WriteString(m.Progress.ViewAs(s.Progress()))
	sb.WriteString("\n")
	sb.WriteString(inactiveStyle.Render(statusLabel(s.Status)))

	return boxStyle.Render(sb.String())
}

func (m *Model) buttonsView() string {
	toggle := "START"
	if m.State.Status == countdown.StatusRunning {
		toggle = "PAUSE"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		buttonStyle.Render(toggle),
		buttonStyle.Render("RESET"),
	)
}

func statusLabel(status countdown.Status) string {
	switch status {
	case countdown.StatusRunning:
		return "Running"
	case countdown.StatusPaused:
		return "Paused"
	case countdown.StatusFinished:
		return "Finished"
	}
	return "Ready"
}

func (m *Model) allLogsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(66).Render("Countdown History"))
	sb.WriteString("\n\n")

	switch {
	case m.Err != nil:
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Cannot load history: %v", m.Err)))
	case m.repo == nil:
		sb.WriteString(inactiveStyle.Render("History is disabled."))
	case len(m.Logs) == 0:
		sb.WriteString(inactiveStyle.Render("No countdowns recorded yet."))
	default:
		sb.WriteString(logHeaderStyle.Render("Recent Countdowns"))
		sb.WriteString("\n")
		for _, e := range m.Logs[m.LogViewScroll:] {
			sb.WriteString(formatLogEntry(e))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Scroll: Up/Down | Back: Esc/v"))
	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(70).Render(sb.String()),
	)
}

func formatLogEntry(e history.Entry) string {
	timeStr := logTimeStyle.Render(humanize.Time(e.EndedAt))
	tag := logTagStyle.Render("[" + string(e.Outcome) + "]")
	return fmt.Sprintf("  %-10s %s of %s %s  %s",
		e.Label,
		formatDuration(e.Elapsed()),
		formatDuration(time.Duration(e.TotalSeconds)*time.Second),
		tag,
		timeStr,
	)
}
