// Package ui provides the terminal user interface for the pomodoro timer.
// This file contains the main App model which owns the panes and routes
// messages using the Bubble Tea architecture.
package ui

import (
	"context"
	"strings"
	"time"

	"pomodoro/internal/config"
	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// wideLayout is the width from which history sits beside the timer.
const wideLayout = 90

// alarmBannerTTL is how long a completion banner stays up unless dismissed.
const alarmBannerTTL = time.Minute

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys *config.KeysConfig

	// SoundName is shown when the custom sound is on.
	SoundName string

	// CheckPermission reports whether desktop alerts can be delivered. A
	// failure only shows a warning; sessions still complete on time.
	CheckPermission func() error

	// SaveDurations persists edited durations, e.g. to the config file.
	SaveDurations func(pomodoro.Durations) error
}

// App is the main application model.
type App struct {
	clock  *pomodoro.Clock
	ticker *pomodoro.Ticker
	alarms <-chan pomodoro.Alarm
	styles *Styles
	config *AppConfig

	state     pomodoro.State
	durations pomodoro.Durations

	timerPane   *TimerPane
	historyPane *HistoryPane
	editor      *DurationEditor
	helpOverlay *HelpOverlay
	help        help.Model

	keys     TimerKeyMap
	helpKeys HelpKeyMap

	showHelp    bool
	showHistory bool
	editing     bool

	alarm      *pomodoro.Alarm
	alarmUntil time.Time
	permission error

	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool
}

// NewApp creates a new application. State loading is deferred to Init() to
// keep the constructor non-blocking. alarms must be the channel the clock
// was created with.
func NewApp(clock *pomodoro.Clock, ticker *pomodoro.Ticker, alarms <-chan pomodoro.Alarm, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	keys := NewTimerKeyMap(cfg.Keys)
	editorKeys := NewEditorKeyMap(cfg.Keys)

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.ShortSeparator = styles.HelpStyle

	return &App{
		clock:       clock,
		ticker:      ticker,
		alarms:      alarms,
		styles:      styles,
		config:      cfg,
		state:       clock.State(),
		durations:   clock.Durations(),
		timerPane:   NewTimerPane(styles),
		historyPane: NewHistoryPane(styles),
		editor:      NewDurationEditor(styles, editorKeys),
		helpOverlay: NewHelpOverlay(styles, keys, editorKeys),
		help:        h,
		keys:        keys,
		helpKeys:    DefaultHelpKeyMap(),
	}
}

// Init loads state and starts the background commands.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(a.clock),
		waitForAlarm(a.alarms),
		checkPermissionCmd(a.config.CheckPermission),
		schedulePulse(a.ticker.Interval()),
		tickCmd(),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		a.setState(msg.state)
		if msg.err != nil {
			a.SetStatus(msg.action+": "+msg.err.Error(), true)
		}
		return a, nil

	case alarmMsg:
		alarm := msg.alarm
		a.alarm = &alarm
		a.alarmUntil = time.Now().Add(alarmBannerTTL)
		a.setState(a.clock.State())
		return a, waitForAlarm(a.alarms)

	case permissionMsg:
		a.permission = msg.err
		return a, nil

	case durationsSavedMsg:
		switch {
		case !msg.applied:
			a.SetStatus("Durations: "+msg.err.Error(), true)
			return a, nil
		case msg.err != nil:
			a.SetStatus("Durations: "+msg.err.Error(), true)
		default:
			a.SetStatus("Durations saved", false)
		}
		a.setState(msg.state)
		return a, nil

	case pulseMsg:
		return a, tea.Batch(pulseCmd(a.clock, a.ticker), schedulePulse(a.ticker.Interval()))

	case tea.FocusMsg:
		return a, foregroundCmd(a.clock, a.ticker, true)

	case tea.BlurMsg:
		return a, foregroundCmd(a.clock, a.ticker, false)

	case tickMsg:
		now := time.Now()
		if a.status != "" && !a.statusUntil.IsZero() && now.After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		if a.alarm != nil && now.After(a.alarmUntil) {
			a.alarm = nil
		}
		return a, tickCmd()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	if a.editing {
		_, cmd := a.editor.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.alarm != nil {
		a.alarm = nil
		return nil
	}

	if a.editing {
		result, cmd := a.editor.Update(msg)
		switch result {
		case editorCancel:
			a.editing = false
		case editorSave:
			a.editing = false
			d, _ := a.editor.Value()
			return saveDurationsCmd(a.clock, d, a.config.SaveDurations)
		}
		return cmd
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return nil

	case key.Matches(msg, a.keys.Toggle):
		return transitionCmd(a.clock, "Toggle", a.clock.Toggle)

	case key.Matches(msg, a.keys.StartWork):
		return a.start(pomodoro.ModeWork)

	case key.Matches(msg, a.keys.StartBreak):
		return a.start(pomodoro.ModeBreak)

	case key.Matches(msg, a.keys.Reset):
		mode := a.state.Mode
		return transitionCmd(a.clock, "Reset", func(ctx context.Context) error {
			return a.clock.Reset(ctx, mode)
		})

	case key.Matches(msg, a.keys.SwitchMode):
		mode := a.state.Mode.Opposite()
		return transitionCmd(a.clock, "Switch", func(ctx context.Context) error {
			return a.clock.Reset(ctx, mode)
		})

	case key.Matches(msg, a.keys.EditDurations):
		a.editing = true
		return a.editor.Open(a.durations)

	case key.Matches(msg, a.keys.ToggleSound):
		on := !a.state.UseCustomSound
		return transitionCmd(a.clock, "Sound", func(ctx context.Context) error {
			return a.clock.SetUseCustomSound(ctx, on)
		})

	case key.Matches(msg, a.keys.ToggleHistory):
		a.showHistory = !a.showHistory
		a.updateLayout()
		return nil
	}

	if a.showHistory {
		return a.historyPane.Update(msg)
	}
	return nil
}

func (a *App) start(mode pomodoro.Mode) tea.Cmd {
	return transitionCmd(a.clock, "Start", func(ctx context.Context) error {
		return a.clock.Start(ctx, mode)
	})
}

func (a *App) setState(s pomodoro.State) {
	a.state = s
	a.durations = a.clock.Durations()
	a.historyPane.SetItems(a.clock.History().Items())
}

func (a *App) updateLayout() {
	a.helpOverlay.SetSize(a.width, a.height)
	a.help.Width = a.width

	timerWidth := a.width
	if a.showHistory && a.width >= wideLayout {
		timerWidth = a.width / 2
	}
	a.timerPane.SetSize(timerWidth)

	// The timer pane and the bars around it take about twenty lines.
	a.historyPane.SetHeight(a.height - 20)
}

// View renders the current screen.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}

	var sections []string
	sections = append(sections, a.renderTitleBar())

	if a.alarm != nil {
		sections = append(sections, a.styles.AlarmStyle.Render(a.alarm.Message+"  (any key to dismiss)"))
	}
	if a.permission != nil {
		sections = append(sections, a.styles.WarningStyle.Render("⚠ Desktop alerts unavailable: "+a.permission.Error()))
	}

	main := a.timerPane.View(a.state, a.durations, a.config.SoundName)
	if a.editing {
		main = lipgloss.JoinVertical(lipgloss.Left, main, a.editor.View())
	}
	if a.showHistory {
		if a.width >= wideLayout {
			main = lipgloss.JoinHorizontal(lipgloss.Top, main, a.historyPane.View())
		} else {
			main = lipgloss.JoinVertical(lipgloss.Left, main, a.historyPane.View())
		}
	}
	sections = append(sections, main)

	if a.status != "" {
		style := a.styles.StatusStyle
		if a.statusErr {
			style = a.styles.ErrorStyle
		}
		sections = append(sections, style.Render(a.status))
	}
	sections = append(sections, a.help.ShortHelpView(a.keys.ShortHelp()))

	return strings.Join(sections, "\n")
}

func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render("🍅 pomodoro")
	mode := a.styles.ModeStyle(a.state.Mode).Render(" " + a.state.Mode.Label())
	return title + mode
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program. Focus reporting drives the ticker's
// foreground state.
func Run(clock *pomodoro.Clock, ticker *pomodoro.Ticker, alarms <-chan pomodoro.Alarm, styles *Styles, cfg *AppConfig) error {
	app := NewApp(clock, ticker, alarms, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}
