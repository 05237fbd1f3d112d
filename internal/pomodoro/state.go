package pomodoro

import (
	"fmt"
	"time"
)

// Store keys. The suffix is a schema version so a future layout can be read
// alongside the old one during migration.
const (
	StateKey   = "pomodoro_state_v1"
	HistoryKey = "pomodoro_history_v1"
)

// Durations holds the configured length of each mode.
type Durations struct {
	Work  time.Duration `json:"work"`
	Break time.Duration `json:"break"`
}

// DefaultDurations returns the classic 25/5 split.
func DefaultDurations() Durations {
	return Durations{Work: 25 * time.Minute, Break: 5 * time.Minute}
}

// For returns the configured duration of m.
func (d Durations) For(m Mode) time.Duration {
	if m == ModeBreak {
		return d.Break
	}
	return d.Work
}

// Validate checks that both durations are at least one millisecond.
func (d Durations) Validate() error {
	if d.Work < time.Millisecond {
		return fmt.Errorf("%w: work duration %s", ErrInvalidDuration, d.Work)
	}
	if d.Break < time.Millisecond {
		return fmt.Errorf("%w: break duration %s", ErrInvalidDuration, d.Break)
	}
	return nil
}

// DurationFromMinSec builds a duration from minute and second fields as
// entered by a user. Each field is clamped to [0,59].
func DurationFromMinSec(minutes, seconds int) time.Duration {
	return time.Duration(clampField(minutes))*time.Minute + time.Duration(clampField(seconds))*time.Second
}

// SplitMinSec is the inverse of DurationFromMinSec for display. Durations of
// an hour or more report 59:59.
func SplitMinSec(d time.Duration) (minutes, seconds int) {
	total := int(d / time.Second)
	minutes, seconds = total/60, total%60
	if minutes > 59 {
		return 59, 59
	}
	return minutes, seconds
}

func clampField(n int) int {
	if n < 0 {
		return 0
	}
	if n > 59 {
		return 59
	}
	return n
}

// State is the persisted timer state. Timestamps are epoch milliseconds.
//
// A running state always carries StartAt and EndAt; an idle state carries
// neither, only RemainingMs. RemainingMs is a display cache while running:
// EndAt is the source of truth.
type State struct {
	Mode           Mode   `json:"mode"`
	IsRunning      bool   `json:"isRunning"`
	StartAt        *int64 `json:"startAt"`
	EndAt          *int64 `json:"endAt"`
	RemainingMs    int64  `json:"remainingMs"`
	CompletedCount int    `json:"completedCount"`
	UseCustomSound bool   `json:"useCustomSound"`
}

// DefaultState is the state of a fresh install: idle work session with the
// full work duration remaining.
func DefaultState(d Durations) State {
	return State{
		Mode:           ModeWork,
		RemainingMs:    d.Work.Milliseconds(),
		UseCustomSound: true,
	}
}

// Remaining returns RemainingMs as a duration.
func (s State) Remaining() time.Duration {
	return time.Duration(s.RemainingMs) * time.Millisecond
}

// StartTime returns StartAt as a time, or the zero time when unset.
func (s State) StartTime() time.Time {
	if s.StartAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*s.StartAt)
}

// EndTime returns EndAt as a time, or the zero time when unset.
func (s State) EndTime() time.Time {
	if s.EndAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*s.EndAt)
}

// Normalize repairs a state read from storage so that it satisfies the
// running/idle invariants. Older or hand-edited files can violate them.
func (s State) Normalize(d Durations) State {
	if !s.Mode.Valid() {
		s.Mode = ModeWork
	}
	if s.RemainingMs < 0 {
		s.RemainingMs = 0
	}
	if s.CompletedCount < 0 {
		s.CompletedCount = 0
	}
	if s.IsRunning && s.EndAt == nil {
		// Running without a deadline cannot be reconciled; keep what was
		// left and treat it as paused.
		s.IsRunning = false
	}
	if s.IsRunning && s.StartAt == nil {
		start := *s.EndAt - d.For(s.Mode).Milliseconds()
		s.StartAt = &start
	}
	if !s.IsRunning {
		s.StartAt = nil
		s.EndAt = nil
	}
	return s
}

// Reconcile recomputes s against the wall clock. It is pure: it never fires
// side effects. expired reports that a running session has reached zero; the
// returned state then still carries the expired EndAt so the caller can
// finalize exactly that session.
func Reconcile(s State, now time.Time) (next State, expired bool) {
	if s.EndAt == nil {
		return s, false
	}
	rem := *s.EndAt - now.UnixMilli()
	if rem < 0 {
		rem = 0
	}
	s.RemainingMs = rem
	return s, rem == 0 && s.IsRunning
}

// FormatRemaining renders a remaining duration as mm:ss, rounding partial
// seconds up so a timer never shows 00:00 while time is left.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func msPtr(v int64) *int64 {
	return &v
}
