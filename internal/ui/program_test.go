package ui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

// TestProgram_StartAndQuit drives the app through a real bubbletea program.
func TestProgram_StartAndQuit(t *testing.T) {
	app := newTestApp(t, nil)
	tm := teatest.NewTestModel(t, app.App, teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("25:00"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyMsg("w"))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("running"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyMsg("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(*App)
	if !ok {
		t.Fatalf("final model is %T", tm.FinalModel(t))
	}
	if !final.quitting {
		t.Error("app should be quitting")
	}
	if !final.state.IsRunning {
		t.Error("the session should still be running after quit")
	}
}

func TestProgram_WindowResize(t *testing.T) {
	app := newTestApp(t, nil)
	tm := teatest.NewTestModel(t, app.App, teatest.WithInitialTermSize(60, 30))

	tm.Send(tea.WindowSizeMsg{Width: 120, Height: 40})
	tm.Send(keyMsg("h"))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("No sessions yet"))
	}, teatest.WithDuration(3*time.Second))

	if err := tm.Quit(); err != nil {
		t.Fatalf("Quit() error: %v", err)
	}
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
