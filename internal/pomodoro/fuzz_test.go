package pomodoro

import (
	"encoding/json"
	"testing"
	"time"
)

// FuzzNormalize feeds arbitrary persisted documents through Normalize and
// checks the running/idle invariants hold afterwards.
func FuzzNormalize(f *testing.F) {
	f.Add([]byte(`{"mode":"work","isRunning":true,"startAt":1000,"endAt":2000,"remainingMs":1000}`))
	f.Add([]byte(`{"mode":"break","isRunning":true,"endAt":5000}`))
	f.Add([]byte(`{"mode":"nap","isRunning":true}`))
	f.Add([]byte(`{"isRunning":false,"startAt":1,"endAt":2,"remainingMs":-5,"completedCount":-1}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))

	d := Durations{Work: 25 * time.Minute, Break: 5 * time.Minute}

	f.Fuzz(func(t *testing.T, data []byte) {
		var s State
		if err := json.Unmarshal(data, &s); err != nil {
			return
		}
		n := s.Normalize(d)

		if !n.Mode.Valid() {
			t.Errorf("mode %q is not valid", n.Mode)
		}
		if n.RemainingMs < 0 || n.CompletedCount < 0 {
			t.Errorf("negative counters: %+v", n)
		}
		if n.IsRunning && (n.StartAt == nil || n.EndAt == nil) {
			t.Errorf("running without timestamps: %+v", n)
		}
		if !n.IsRunning && (n.StartAt != nil || n.EndAt != nil) {
			t.Errorf("idle with timestamps: %+v", n)
		}
	})
}

// FuzzReconcile checks that reconciliation never reports a negative
// remaining time and only expires running sessions.
func FuzzReconcile(f *testing.F) {
	f.Add(int64(1000), int64(500), true)
	f.Add(int64(1000), int64(1000), true)
	f.Add(int64(1000), int64(5000), false)
	f.Add(int64(-1), int64(0), true)

	f.Fuzz(func(t *testing.T, endAt, now int64, running bool) {
		s := State{Mode: ModeWork, IsRunning: running, EndAt: &endAt, StartAt: &endAt}
		next, expired := Reconcile(s, time.UnixMilli(now))

		if next.RemainingMs < 0 {
			t.Errorf("remaining = %d", next.RemainingMs)
		}
		if expired && !running {
			t.Error("an idle state cannot expire")
		}
		if expired != (running && next.RemainingMs == 0) {
			t.Errorf("expired = %v with remaining %d", expired, next.RemainingMs)
		}
	})
}
