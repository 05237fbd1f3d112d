package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"pomodoro/internal/pomodoro"
)

// Scheduler delivers alerts at their fire time using one timer per alert id.
// It implements pomodoro.Notifier. Scheduling an id that is pending replaces
// it; a replaced or cancelled alert never fires.
type Scheduler struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	seq     uint64
	pending map[int]*pendingAlert
	onFired func(pomodoro.Fired)
	closed  bool
}

type pendingAlert struct {
	alert pomodoro.Alert
	seq   uint64
	timer *time.Timer
}

// NewScheduler creates a scheduler that delivers through sender. A nil
// sender drops the desktop notification but still reports fired alerts.
func NewScheduler(sender Sender, logger *slog.Logger) *Scheduler {
	if sender == nil {
		sender = NoopSender()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		sender:  sender,
		logger:  logger,
		now:     time.Now,
		pending: make(map[int]*pendingAlert),
	}
}

// OnFired registers the callback invoked after an alert goes off. It runs on
// the timer goroutine.
func (s *Scheduler) OnFired(fn func(pomodoro.Fired)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFired = fn
}

// CheckPermission reports pomodoro.ErrPermissionDenied when the platform
// cannot show notifications.
func (s *Scheduler) CheckPermission() error {
	if !s.sender.IsSupported() {
		return pomodoro.ErrPermissionDenied
	}
	return nil
}

func (s *Scheduler) Schedule(_ context.Context, alert pomodoro.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if old, ok := s.pending[alert.ID]; ok {
		old.timer.Stop()
	}

	s.seq++
	p := &pendingAlert{alert: alert, seq: s.seq}
	delay := alert.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	p.timer = time.AfterFunc(delay, func() { s.fire(alert.ID, p.seq) })
	s.pending[alert.ID] = p

	s.logger.Debug("alert scheduled", "id", alert.ID, "mode", alert.Mode, "fire_at", alert.FireAt)
	return nil
}

func (s *Scheduler) Cancel(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
		s.logger.Debug("alert cancelled", "id", id)
	}
	return nil
}

// Pending returns the alerts waiting to fire, keyed by id.
func (s *Scheduler) Pending() map[int]pomodoro.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]pomodoro.Alert, len(s.pending))
	for id, p := range s.pending {
		out[id] = p.alert
	}
	return out
}

// Close stops all timers. Later Schedule calls are ignored.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	s.closed = true
	return nil
}

func (s *Scheduler) fire(id int, seq uint64) {
	s.mu.Lock()
	p, ok := s.pending[id]
	// A timer that lost the race with Stop still runs; the sequence number
	// tells it apart from the current alert.
	if !ok || p.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	cb := s.onFired
	s.mu.Unlock()

	msg := Message{Title: p.alert.Title, Body: p.alert.Body, Sound: p.alert.Sound}
	if err := s.sender.Send(msg); err != nil {
		s.logger.Warn("send notification failed", "id", id, "error", err)
	}

	if cb != nil {
		cb(pomodoro.Fired{ID: id, FireAt: p.alert.FireAt, At: s.now()})
	}
}
