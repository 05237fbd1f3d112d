package pomodoro

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

var errBroken = errors.New("broken")

// fakeClock is a settable wall clock starting at the Unix epoch.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(ms int64) *fakeClock {
	return &fakeClock{now: time.UnixMilli(ms)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(ms int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = time.UnixMilli(ms)
}

// memStore round-trips values through JSON like the real backends do.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	writes  int
	failGet bool
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) GetJSON(_ context.Context, key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return false, errBroken
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (m *memStore) SetJSON(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errBroken
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.writes++
	return nil
}

func (m *memStore) state(t *testing.T) State {
	t.Helper()
	var s State
	found, err := m.GetJSON(context.Background(), StateKey, &s)
	if err != nil || !found {
		t.Fatalf("persisted state: found=%v err=%v", found, err)
	}
	return s
}

// recNotifier records pending alerts by id.
type recNotifier struct {
	mu        sync.Mutex
	pending   map[int]Alert
	cancels   []int
	schedules []Alert
	fail      bool
}

func newRecNotifier() *recNotifier {
	return &recNotifier{pending: map[int]Alert{}}
}

func (r *recNotifier) Schedule(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errBroken
	}
	r.pending[a.ID] = a
	r.schedules = append(r.schedules, a)
	return nil
}

func (r *recNotifier) Cancel(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errBroken
	}
	delete(r.pending, id)
	r.cancels = append(r.cancels, id)
	return nil
}

func (r *recNotifier) Pending() map[int]Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]Alert, len(r.pending))
	for k, v := range r.pending {
		out[k] = v
	}
	return out
}

type fixture struct {
	clock    *Clock
	now      *fakeClock
	store    *memStore
	notifier *recNotifier
	alarms   chan Alarm
}

func newFixture(t *testing.T, d Durations) *fixture {
	t.Helper()
	f := &fixture{
		now:      newFakeClock(0),
		store:    newMemStore(),
		notifier: newRecNotifier(),
		alarms:   make(chan Alarm, 16),
	}
	f.clock = New(Options{
		Store:     f.store,
		Notifier:  f.notifier,
		Durations: d,
		SoundName: "bell",
		Now:       f.now.Now,
		Alarms:    f.alarms,
	})
	return f
}

func (f *fixture) drainAlarms() []Alarm {
	var out []Alarm
	for {
		select {
		case a := <-f.alarms:
			out = append(out, a)
		default:
			return out
		}
	}
}

func classic() Durations {
	return Durations{Work: 1500000 * time.Millisecond, Break: 300000 * time.Millisecond}
}
