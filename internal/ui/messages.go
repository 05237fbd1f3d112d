// Package ui provides the terminal user interface for the pomodoro timer.
// This file defines message types for async clock operations using the
// Bubble Tea command pattern. Clock transitions touch the store and the
// notifier, so they run in commands to keep the event loop responsive.
package ui

import (
	"time"

	"pomodoro/internal/pomodoro"
)

// stateMsg carries the clock state after a transition or reconciliation.
// err is advisory: the transition was applied.
type stateMsg struct {
	state pomodoro.State
	err   error
	// action names the user action for status messages; empty for pulses.
	action string
}

// alarmMsg is sent once per completed session.
type alarmMsg struct {
	alarm pomodoro.Alarm
}

// permissionMsg reports whether desktop alerts can be delivered.
type permissionMsg struct {
	err error
}

// durationsSavedMsg is sent after the editor's values were applied.
// err may be advisory when applied is set.
type durationsSavedMsg struct {
	durations pomodoro.Durations
	state     pomodoro.State
	applied   bool
	err       error
}

// tickMsg expires status messages and alarm banners.
type tickMsg time.Time
