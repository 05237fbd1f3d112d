package pomodoro

import (
	"context"
	"time"
)

// Store is durable key-value persistence of JSON-serializable values.
// GetJSON leaves v untouched and reports found=false when key is absent, so
// callers pre-fill v with their fallback.
type Store interface {
	GetJSON(ctx context.Context, key string, v any) (found bool, err error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Notifier schedules one-shot alerts for a future instant. Scheduling an id
// that is already pending replaces it.
type Notifier interface {
	Schedule(ctx context.Context, alert Alert) error
	Cancel(ctx context.Context, id int) error
}

// Alert describes a scheduled end-of-session notification.
type Alert struct {
	ID     int
	FireAt time.Time
	Title  string
	Body   string
	Mode   Mode
	// Sound is the sound name to play, empty for the platform default.
	Sound string
}

// Fired is reported by a Notifier when an alert went off.
type Fired struct {
	ID     int
	FireAt time.Time // the instant the alert was scheduled for
	At     time.Time // when it actually fired
}

// Alarm is emitted once per completed session.
type Alarm struct {
	Mode    Mode
	Message string
	Item    SessionItem
}

func alertFor(m Mode, fireAt time.Time, sound string) Alert {
	a := Alert{
		ID:     m.NotificationID(),
		FireAt: fireAt,
		Mode:   m,
		Sound:  sound,
	}
	if m == ModeWork {
		a.Title = "Work session finished"
		a.Body = "Time for a break!"
	} else {
		a.Title = "Break finished"
		a.Body = "Back to work!"
	}
	return a
}

func alarmMessage(m Mode) string {
	if m == ModeWork {
		return "⏰ Work session over! Time for a break."
	}
	return "⏰ Break over! Back to work."
}

type nopNotifier struct{}

func (nopNotifier) Schedule(context.Context, Alert) error { return nil }
func (nopNotifier) Cancel(context.Context, int) error     { return nil }

// NopNotifier returns a Notifier that does nothing. One-shot commands use it
// because the process exits before any alert could fire.
func NopNotifier() Notifier {
	return nopNotifier{}
}
