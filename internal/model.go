package internal

import (
	"countdown_tui/internal/countdown"
	"countdown_tui/internal/history"
	"countdown_tui/internal/preset"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	toastTimesUp     = "Times Up !!!"
	toastNoSelection = "You may select a time to countdown~"
)

// MsgEngine carries an engine event into the program.
type MsgEngine struct {
	Event countdown.Event
}

type Model struct {
	Rows      [][]preset.Preset
	RowIndex  int
	ColIndex  int
	State     countdown.State
	Toast     string
	Err       error
	Width     int
	Progress  progress.Model
	engine    *countdown.Engine
	repo      *history.Repository
	logsLimit int

	// History viewer state
	ShowLogView   bool
	LogViewScroll int
	Logs          []history.Entry
}

// NewModel builds the UI over engine. repo may be nil when history is
// disabled.
func NewModel(engine *countdown.Engine, catalog preset.Catalog, repo *history.Repository, logsLimit int) *Model {
	return &Model{
		Rows:      catalog.Rows(),
		State:     engine.State(),
		Progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		engine:    engine,
		repo:      repo,
		logsLimit: logsLimit,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgEngine:
		// events can trail commands applied synchronously; the snapshot is current
		m.State = m.engine.State()
		if msg.Event.Type == countdown.EventFinished {
			m.Toast = toastTimesUp
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Progress.Width = progressWidth(msg.Width)
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowLogView {
		return m.allLogsView()
	}
	return m.mainView()
}

// Cursor returns the preset under the cursor.
func (m *Model) Cursor() *preset.Preset {
	if m.RowIndex < 0 || m.RowIndex >= len(m.Rows) {
		return nil
	}
	row := m.Rows[m.RowIndex]
	if m.ColIndex < 0 || m.ColIndex >= len(row) {
		return nil
	}
	return &row[m.ColIndex]
}

// Toggle starts or pauses the countdown, like the START/PAUSE button.
func (m *Model) Toggle() {
	if m.State.SelectedLabel == "" {
		m.Toast = toastNoSelection
		return
	}
	if m.State.Status == countdown.StatusRunning {
		m.engine.Pause()
	} else {
		m.engine.Start()
	}
	m.State = m.engine.State()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowLogView {
		return m.handleLogViewInput(msg)
	}

	// any key dismisses the toast
	m.Toast = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.RowIndex > 0 {
			m.RowIndex--
			m.clampCol()
		}
	case "down", "j":
		if m.RowIndex < len(m.Rows)-1 {
			m.RowIndex++
			m.clampCol()
		}
	case "left", "h":
		if m.ColIndex > 0 {
			m.ColIndex--
		}
	case "right", "l":
		if m.RowIndex < len(m.Rows) && m.ColIndex < len(m.Rows[m.RowIndex])-1 {
			m.ColIndex++
		}
	case "enter":
		if p := m.Cursor(); p != nil {
			m.engine.Select(*p)
			m.State = m.engine.State()
		}
	case " ", "s":
		m.Toggle()
	case "r":
		m.engine.Reset(false)
		m.State = m.engine.State()
	case "v":
		m.Logs = nil
		m.Err = nil
		if m.repo != nil {
			logs, err := m.repo.Recent(m.logsLimit)
			if err != nil {
				m.Err = err
			} else {
				m.Logs = logs
			}
		}
		m.ShowLogView = true
		m.LogViewScroll = 0
	}
	return m, nil
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "v":
		m.ShowLogView = false
		m.Logs = nil
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := len(m.Logs) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

func (m *Model) clampCol() {
	if m.RowIndex >= len(m.Rows) {
		return
	}
	if last := len(m.Rows[m.RowIndex]) - 1; m.ColIndex > last {
		m.ColIndex = last
	}
}

func progressWidth(width int) int {
	w := width - 10
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}
