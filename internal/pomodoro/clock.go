package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// firedSlack is how far ahead of EndAt a notifier callback may arrive and
// still count as the end of the session. Platform schedulers only promise
// coarse timing.
const firedSlack = time.Second

// Options configures a Clock.
type Options struct {
	Store     Store
	Notifier  Notifier
	History   *History
	Durations Durations

	// SoundName is passed to the notifier when the state asks for a
	// custom sound.
	SoundName string

	// Now overrides the wall clock, for tests.
	Now func() time.Time

	// Alarms receives one event per completed session. Sends never block;
	// an event is dropped (and logged) if the channel is full.
	Alarms chan<- Alarm

	Logger *slog.Logger
}

// Clock owns the authoritative timer state. Every transition runs under one
// mutex, including the store and notifier calls around it, so concurrent
// triggers (ticker, foreground reconcile, notifier callback, API calls) are
// serialized and see each other's results.
type Clock struct {
	mu        sync.Mutex
	state     State
	durations Durations
	soundName string

	// completedFor is the EndAt of the last finalized session.
	completedFor *int64

	store    Store
	notifier Notifier
	history  *History
	now      func() time.Time
	alarms   chan<- Alarm
	logger   *slog.Logger
}

// New creates a clock in the default idle state. Call Load to restore
// persisted state.
func New(opts Options) *Clock {
	c := &Clock{
		durations: opts.Durations,
		soundName: opts.SoundName,
		store:     opts.Store,
		notifier:  opts.Notifier,
		history:   opts.History,
		now:       opts.Now,
		alarms:    opts.Alarms,
		logger:    opts.Logger,
	}
	if c.durations.Validate() != nil {
		c.durations = DefaultDurations()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.notifier == nil {
		c.notifier = NopNotifier()
	}
	if c.history == nil {
		c.history = NewHistory(c.store, c.logger)
	}
	c.state = DefaultState(c.durations)
	return c
}

// Load restores state and history from the store and reconciles them
// against the wall clock, so a session that ended while the process was gone
// is finalized now. A session still running gets its alert scheduled again.
// A read failure falls back to the default state; the
// returned error is then advisory.
func (c *Clock) Load(ctx context.Context) (State, error) {
	c.mu.Lock()

	var errs []error
	s := DefaultState(c.durations)
	if c.store != nil {
		var saved State
		found, err := c.store.GetJSON(ctx, StateKey, &saved)
		switch {
		case err != nil:
			c.logger.Warn("load state failed, using defaults", "error", err)
			errs = append(errs, fmt.Errorf("load state: %w: %v", ErrPersistenceUnavailable, err))
		case found:
			s = saved.Normalize(c.durations)
		}
	}
	c.state = s

	if _, err := c.history.Load(ctx); err != nil {
		c.logger.Warn("load history failed", "error", err)
		errs = append(errs, err)
	}

	alarms, err := c.reconcileLocked(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	// Pending alerts do not outlive the process that scheduled them.
	if c.state.IsRunning && c.state.EndAt != nil {
		errs = append(errs, c.scheduleLocked(ctx, c.state.Mode, *c.state.EndAt))
	}
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(alarms)
	return out, errors.Join(errs...)
}

// State returns the current state with RemainingMs recomputed. It has no
// side effects; an expired session is finalized by Reconcile.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Running reports whether a session is in progress.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsRunning
}

// Durations returns the configured durations.
func (c *Clock) Durations() Durations {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durations
}

// History returns the session log.
func (c *Clock) History() *History {
	return c.history
}

// Start begins a session of mode with its full configured duration. Any
// session already in progress is discarded. The transition is always
// applied; a non-nil error reports an alert or persistence failure.
func (c *Clock) Start(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("start: %w: %q", ErrInvalidMode, mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.state.IsRunning && c.state.Mode != mode {
		// The other mode's alert would otherwise go off for a session
		// that no longer exists.
		errs = append(errs, c.cancelLocked(ctx, c.state.Mode))
	}

	now := c.now().UnixMilli()
	d := c.durations.For(mode).Milliseconds()
	end := now + d

	errs = append(errs, c.scheduleLocked(ctx, mode, end))
	c.completedFor = nil

	c.state.Mode = mode
	c.state.IsRunning = true
	c.state.StartAt = msPtr(now)
	c.state.EndAt = msPtr(end)
	c.state.RemainingMs = d

	errs = append(errs, c.persistLocked(ctx))
	c.logger.Info("session started", "mode", mode, "end_at", time.UnixMilli(end))
	return errors.Join(errs...)
}

// Pause stops a running session and keeps the remaining time. The pending
// alert is cancelled so it cannot fire for a paused session. A session whose
// deadline already passed is completed instead.
func (c *Clock) Pause(ctx context.Context) error {
	c.mu.Lock()

	alarms, err := c.reconcileLocked(ctx)
	if len(alarms) > 0 || !c.state.IsRunning || c.state.EndAt == nil {
		c.mu.Unlock()
		c.emit(alarms)
		return err
	}
	defer c.mu.Unlock()

	rem := *c.state.EndAt - c.now().UnixMilli()
	if rem < 0 {
		rem = 0
	}

	errs := []error{err}
	errs = append(errs, c.cancelLocked(ctx, c.state.Mode))

	c.state.IsRunning = false
	c.state.StartAt = nil
	c.state.EndAt = nil
	c.state.RemainingMs = rem

	errs = append(errs, c.persistLocked(ctx))
	c.logger.Info("session paused", "mode", c.state.Mode, "remaining_ms", rem)
	return errors.Join(errs...)
}

// Resume continues a paused session. It is a no-op when already running or
// when nothing is left.
func (c *Clock) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsRunning || c.state.RemainingMs <= 0 {
		return nil
	}

	now := c.now().UnixMilli()
	end := now + c.state.RemainingMs

	var errs []error
	errs = append(errs, c.scheduleLocked(ctx, c.state.Mode, end))
	c.completedFor = nil

	c.state.IsRunning = true
	c.state.StartAt = msPtr(now)
	c.state.EndAt = msPtr(end)

	errs = append(errs, c.persistLocked(ctx))
	c.logger.Info("session resumed", "mode", c.state.Mode, "end_at", time.UnixMilli(end))
	return errors.Join(errs...)
}

// Reset stops the timer and switches to mode with its full duration.
func (c *Clock) Reset(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("reset: %w: %q", ErrInvalidMode, mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.resetLocked(ctx, mode)
	c.completedFor = nil
	return err
}

// Toggle pauses a running session, resumes a paused one, and starts the
// current mode when nothing is left to resume.
func (c *Clock) Toggle(ctx context.Context) error {
	c.mu.Lock()
	running, mode, rem := c.state.IsRunning, c.state.Mode, c.state.RemainingMs
	full := c.durations.For(mode).Milliseconds()
	c.mu.Unlock()

	switch {
	case running:
		return c.Pause(ctx)
	case rem > 0 && rem < full:
		return c.Resume(ctx)
	default:
		return c.Start(ctx, mode)
	}
}

// Reconcile recomputes the state against the wall clock and finalizes the
// session if it has expired. It is safe to call from any number of
// goroutines for the same expired session; only the first finalizes it.
func (c *Clock) Reconcile(ctx context.Context) (State, error) {
	c.mu.Lock()
	alarms, err := c.reconcileLocked(ctx)
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(alarms)
	return out, err
}

// HandleFired is the notifier callback path. A callback for the running
// session completes it if the deadline is at most firedSlack away; anything
// else (a superseded or cancelled alert, a session already finalized by
// another path) only reconciles.
func (c *Clock) HandleFired(ctx context.Context, f Fired) (State, error) {
	c.mu.Lock()

	var alarms []Alarm
	var err error

	mode, known := modeForNotification(f.ID)
	s := c.state
	now := c.now()
	if known && s.IsRunning && s.Mode == mode && s.EndAt != nil &&
		f.FireAt.UnixMilli() == *s.EndAt &&
		*s.EndAt-now.UnixMilli() <= firedSlack.Milliseconds() {
		s.RemainingMs = 0
		alarms, err = c.completeLocked(ctx, s, now)
	} else {
		alarms, err = c.reconcileLocked(ctx)
	}
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(alarms)
	return out, err
}

// SetDurations changes the configured durations. An idle timer is reset to
// the new full duration of its mode; a running session keeps its deadline.
func (c *Clock) SetDurations(ctx context.Context, d Durations) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.durations = d
	if c.state.IsRunning {
		return nil
	}
	err := c.resetLocked(ctx, c.state.Mode)
	c.completedFor = nil
	return err
}

// SetUseCustomSound toggles the custom alert sound. A pending alert is
// rescheduled so the change applies to it.
func (c *Clock) SetUseCustomSound(ctx context.Context, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.UseCustomSound == on {
		return nil
	}
	c.state.UseCustomSound = on

	var errs []error
	if c.state.IsRunning && c.state.EndAt != nil {
		errs = append(errs, c.scheduleLocked(ctx, c.state.Mode, *c.state.EndAt))
	}
	errs = append(errs, c.persistLocked(ctx))
	return errors.Join(errs...)
}

// SetSoundName changes the sound passed to future alerts.
func (c *Clock) SetSoundName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.soundName = name
}

func (c *Clock) reconcileLocked(ctx context.Context) ([]Alarm, error) {
	next, expired := Reconcile(c.state, c.now())
	if !expired {
		// RemainingMs is only a display cache; not worth a write.
		c.state = next
		return nil, nil
	}
	return c.completeLocked(ctx, next, c.now())
}

// completeLocked finalizes the session described by snap. It runs at most
// once per EndAt: the marker is compared and set under c.mu.
func (c *Clock) completeLocked(ctx context.Context, snap State, now time.Time) ([]Alarm, error) {
	if snap.EndAt == nil {
		return nil, nil
	}
	if c.completedFor != nil && *c.completedFor == *snap.EndAt {
		return nil, nil
	}
	c.completedFor = msPtr(*snap.EndAt)

	mode := snap.Mode
	end := *snap.EndAt
	start := now.UnixMilli() - c.durations.For(mode).Milliseconds()
	if snap.StartAt != nil {
		start = *snap.StartAt
	}
	if start > end {
		start = end
	}

	item := SessionItem{
		ID:        newSessionID(now),
		Mode:      mode,
		StartAt:   start,
		EndAt:     end,
		Completed: true,
	}

	var errs []error
	if err := c.history.Append(ctx, item); err != nil {
		errs = append(errs, err)
	}

	c.state = snap
	if mode == ModeWork {
		c.state.CompletedCount++
	}
	// Chaining keeps the marker so a late trigger carrying this EndAt is
	// still rejected.
	errs = append(errs, c.resetLocked(ctx, mode.Opposite()))

	c.logger.Info("session completed",
		"mode", mode,
		"started_at", item.StartTime(),
		"ended_at", item.EndTime(),
		"completed_count", c.state.CompletedCount,
	)
	return []Alarm{{Mode: mode, Message: alarmMessage(mode), Item: item}}, errors.Join(errs...)
}

func (c *Clock) resetLocked(ctx context.Context, mode Mode) error {
	var errs []error
	if c.state.IsRunning && c.state.Mode != mode {
		errs = append(errs, c.cancelLocked(ctx, c.state.Mode))
	}
	errs = append(errs, c.cancelLocked(ctx, mode))

	c.state.Mode = mode
	c.state.IsRunning = false
	c.state.StartAt = nil
	c.state.EndAt = nil
	c.state.RemainingMs = c.durations.For(mode).Milliseconds()

	errs = append(errs, c.persistLocked(ctx))
	return errors.Join(errs...)
}

func (c *Clock) scheduleLocked(ctx context.Context, mode Mode, endMs int64) error {
	sound := ""
	if c.state.UseCustomSound {
		sound = c.soundName
	}
	alert := alertFor(mode, time.UnixMilli(endMs), sound)
	if err := c.notifier.Schedule(ctx, alert); err != nil {
		c.logger.Warn("schedule alert failed", "id", alert.ID, "mode", mode, "error", err)
		return fmt.Errorf("schedule %s alert: %w: %v", mode, ErrSchedulingFailure, err)
	}
	return nil
}

func (c *Clock) cancelLocked(ctx context.Context, mode Mode) error {
	id := mode.NotificationID()
	if err := c.notifier.Cancel(ctx, id); err != nil {
		c.logger.Warn("cancel alert failed", "id", id, "mode", mode, "error", err)
		return fmt.Errorf("cancel %s alert: %w: %v", mode, ErrSchedulingFailure, err)
	}
	return nil
}

func (c *Clock) persistLocked(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.SetJSON(ctx, StateKey, c.state); err != nil {
		c.logger.Warn("persist state failed", "error", err)
		return fmt.Errorf("save state: %w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (c *Clock) snapshotLocked() State {
	s, _ := Reconcile(c.state, c.now())
	return s
}

func (c *Clock) emit(alarms []Alarm) {
	if c.alarms == nil {
		return
	}
	for _, a := range alarms {
		select {
		case c.alarms <- a:
		default:
			c.logger.Warn("alarm dropped, receiver not keeping up", "mode", a.Mode)
		}
	}
}
