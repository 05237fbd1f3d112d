// Package pomodoro implements the work/break session clock: the timer state
// machine, wall-clock reconciliation, the completion guard and the bounded
// history of finished sessions.
package pomodoro

import (
	"fmt"
	"strings"
)

// Mode identifies which half of the cycle a session belongs to.
type Mode string

const (
	ModeWork  Mode = "work"
	ModeBreak Mode = "break"
)

// Alert identifiers are fixed per mode so that at most one alert per mode is
// ever pending. Scheduling the same id again supersedes the earlier alert.
const (
	workNotificationID  = 101
	breakNotificationID = 102
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeWork || m == ModeBreak
}

// Opposite returns the mode that follows m in the cycle.
func (m Mode) Opposite() Mode {
	if m == ModeBreak {
		return ModeWork
	}
	return ModeBreak
}

// NotificationID returns the stable alert identifier for m.
func (m Mode) NotificationID() int {
	if m == ModeBreak {
		return breakNotificationID
	}
	return workNotificationID
}

// Label returns a human-readable name.
func (m Mode) Label() string {
	if m == ModeBreak {
		return "Break"
	}
	return "Work"
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode parses a mode name, ignoring case and surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// modeForNotification maps an alert id back to its mode.
func modeForNotification(id int) (Mode, bool) {
	switch id {
	case workNotificationID:
		return ModeWork, true
	case breakNotificationID:
		return ModeBreak, true
	}
	return "", false
}
