// Package ui provides the terminal user interface for the pomodoro timer.
// This file contains tea.Cmd factories that wrap clock operations. Each
// command returns a corresponding message type defined in messages.go.
package ui

import (
	"context"
	"errors"
	"time"

	"pomodoro/internal/pomodoro"

	tea "github.com/charmbracelet/bubbletea"
)

// loadCmd restores persisted state and finalizes a session that ended while
// the app was closed.
func loadCmd(clock *pomodoro.Clock) tea.Cmd {
	return func() tea.Msg {
		s, err := clock.Load(context.Background())
		return stateMsg{state: s, err: err, action: "Load"}
	}
}

// transitionCmd runs one clock transition and reports the resulting state.
func transitionCmd(clock *pomodoro.Clock, action string, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(context.Background())
		return stateMsg{state: clock.State(), err: err, action: action}
	}
}

// foregroundCmd records terminal focus. Regaining focus reconciles at once.
func foregroundCmd(clock *pomodoro.Clock, ticker *pomodoro.Ticker, fg bool) tea.Cmd {
	return func() tea.Msg {
		ticker.SetForeground(context.Background(), fg)
		return stateMsg{state: clock.State()}
	}
}

// pulseMsg triggers one ticker pulse.
type pulseMsg struct{}

func schedulePulse(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pulseMsg{}
	})
}

// pulseCmd reconciles when the ticker is in the foreground and a session is
// running. It returns nil otherwise, so an idle timer costs no redraws.
func pulseCmd(clock *pomodoro.Clock, ticker *pomodoro.Ticker) tea.Cmd {
	return func() tea.Msg {
		if !ticker.Pulse(context.Background()) {
			return nil
		}
		return stateMsg{state: clock.State()}
	}
}

// waitForAlarm blocks until the clock reports a completed session.
func waitForAlarm(alarms <-chan pomodoro.Alarm) tea.Cmd {
	if alarms == nil {
		return nil
	}
	return func() tea.Msg {
		alarm, ok := <-alarms
		if !ok {
			return nil
		}
		return alarmMsg{alarm: alarm}
	}
}

// checkPermissionCmd asks the notifier whether alerts can be shown.
func checkPermissionCmd(check func() error) tea.Cmd {
	if check == nil {
		return nil
	}
	return func() tea.Msg {
		return permissionMsg{err: check()}
	}
}

// saveDurationsCmd applies new durations to the clock and then persists them
// through save, when set.
func saveDurationsCmd(clock *pomodoro.Clock, d pomodoro.Durations, save func(pomodoro.Durations) error) tea.Cmd {
	return func() tea.Msg {
		err := clock.SetDurations(context.Background(), d)
		if errors.Is(err, pomodoro.ErrInvalidDuration) {
			return durationsSavedMsg{err: err}
		}
		if save != nil {
			err = errors.Join(err, save(d))
		}
		return durationsSavedMsg{durations: d, state: clock.State(), applied: true, err: err}
	}
}

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
