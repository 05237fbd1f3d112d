package pomodoro

import (
	"context"
	"sync"
	"time"
)

// DefaultTickInterval is the display refresh cadence while visible.
const DefaultTickInterval = 250 * time.Millisecond

// Reconciler is the part of Clock the ticker drives.
type Reconciler interface {
	Reconcile(ctx context.Context) (State, error)
	Running() bool
}

// Ticker re-evaluates the clock on a fixed cadence while the UI is in the
// foreground and a session is running. It only refreshes what is displayed;
// the clock completes sessions correctly without it.
type Ticker struct {
	clock    Reconciler
	interval time.Duration

	mu         sync.Mutex
	foreground bool
	onPulse    func(State, error)
}

// NewTicker creates a ticker for clock. A non-positive interval uses
// DefaultTickInterval. The ticker starts in the foreground.
func NewTicker(clock Reconciler, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{clock: clock, interval: interval, foreground: true}
}

// Interval returns the pulse cadence.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// OnPulse registers fn to receive the state after each reconciliation the
// ticker performs. It replaces any earlier callback.
func (t *Ticker) OnPulse(fn func(State, error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPulse = fn
}

// SetForeground records visibility. Coming back to the foreground reconciles
// immediately, so a session that ended while hidden is finalized before the
// next pulse.
func (t *Ticker) SetForeground(ctx context.Context, fg bool) {
	t.mu.Lock()
	was := t.foreground
	t.foreground = fg
	t.mu.Unlock()

	if fg && !was {
		t.reconcile(ctx)
	}
}

// Foreground reports the last visibility set.
func (t *Ticker) Foreground() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreground
}

// Pulse performs one tick: it reconciles if the ticker is in the foreground
// and a session is running. It reports whether a reconciliation happened.
func (t *Ticker) Pulse(ctx context.Context) bool {
	if !t.Foreground() || !t.clock.Running() {
		return false
	}
	t.reconcile(ctx)
	return true
}

// Run pulses until ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Pulse(ctx)
		}
	}
}

func (t *Ticker) reconcile(ctx context.Context) {
	s, err := t.clock.Reconcile(ctx)

	t.mu.Lock()
	fn := t.onPulse
	t.mu.Unlock()

	if fn != nil {
		fn(s, err)
	}
}
