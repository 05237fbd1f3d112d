package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"pomodoro/internal/config"
	"pomodoro/internal/kvstore"
	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// setupTest disables colors for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

type testClock struct {
	mu sync.Mutex
	ms int64
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.UnixMilli(c.ms)
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += d.Milliseconds()
}

type testApp struct {
	*App
	wall   *testClock
	alarms chan pomodoro.Alarm
}

// newTestApp builds an app over an in-memory clock with 25m/5m sessions.
func newTestApp(t *testing.T, cfg *AppConfig) *testApp {
	t.Helper()
	setupTest(t)

	wall := &testClock{ms: time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local).UnixMilli()}
	alarms := make(chan pomodoro.Alarm, 4)
	clock := pomodoro.New(pomodoro.Options{
		Store:     kvstore.NewMemoryStore(),
		Durations: pomodoro.Durations{Work: 25 * time.Minute, Break: 5 * time.Minute},
		SoundName: "bell",
		Now:       wall.Now,
		Alarms:    alarms,
	})
	if _, err := clock.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ticker := pomodoro.NewTicker(clock, time.Second)

	app := NewApp(clock, ticker, alarms, createTestStyles(), cfg)
	// A blinking cursor would hand back timer commands on every key.
	for i := range app.editor.fields {
		app.editor.fields[i].Cursor.SetMode(cursor.CursorStatic)
	}
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testApp{App: app, wall: wall, alarms: alarms}
}

// press sends a key and runs the resulting command.
func (ta *testApp) press(t *testing.T, k string) {
	t.Helper()
	_, cmd := ta.Update(keyMsg(k))
	ta.run(t, cmd)
}

// run executes cmd synchronously and feeds the app's own message back. The
// follow-up command is dropped; after an alarm it would block on the channel.
func (ta *testApp) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case stateMsg, alarmMsg, permissionMsg, durationsSavedMsg:
		ta.Update(msg)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
