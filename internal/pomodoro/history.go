package pomodoro

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxHistory bounds the number of sessions kept.
const MaxHistory = 100

// SessionItem is one finished session. It is never mutated after creation.
type SessionItem struct {
	ID        string `json:"id"`
	Mode      Mode   `json:"mode"`
	StartAt   int64  `json:"startAt"`
	EndAt     int64  `json:"endAt"`
	Completed bool   `json:"completed"`
}

// StartTime returns StartAt as a time.
func (it SessionItem) StartTime() time.Time {
	return time.UnixMilli(it.StartAt)
}

// EndTime returns EndAt as a time.
func (it SessionItem) EndTime() time.Time {
	return time.UnixMilli(it.EndAt)
}

// Duration returns the wall-clock length of the session.
func (it SessionItem) Duration() time.Duration {
	return time.Duration(it.EndAt-it.StartAt) * time.Millisecond
}

// newSessionID returns a time-ordered id. UUIDv7 embeds the creation time in
// its leading bits; the millisecond timestamp is only a fallback.
func newSessionID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(now.UnixMilli(), 10)
	}
	return id.String()
}

// History is the append-only, deduplicated, bounded log of completed
// sessions, newest first.
type History struct {
	mu     sync.Mutex
	store  Store
	items  []SessionItem
	limit  int
	logger *slog.Logger
}

// NewHistory creates an empty history persisted to store. A nil store keeps
// the history in memory only.
func NewHistory(store Store, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &History{store: store, limit: MaxHistory, logger: logger}
}

// Load replaces the in-memory log with the persisted one. Duplicates written
// by earlier versions are dropped. On a read failure the log is left empty
// and the error wraps ErrPersistenceUnavailable.
func (h *History) Load(ctx context.Context) ([]SessionItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = nil
	if h.store == nil {
		return nil, nil
	}

	items := []SessionItem{}
	if _, err := h.store.GetJSON(ctx, HistoryKey, &items); err != nil {
		return nil, fmt.Errorf("load history: %w: %v", ErrPersistenceUnavailable, err)
	}
	h.items = bound(Dedupe(items), h.limit)
	return cloneItems(h.items), nil
}

// Append inserts item at the front, deduplicates, truncates and persists.
// The in-memory log is updated even when persisting fails.
func (h *History) Append(ctx context.Context, item SessionItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]SessionItem, 0, len(h.items)+1)
	next = append(next, item)
	next = append(next, h.items...)
	h.items = bound(Dedupe(next), h.limit)

	if h.store == nil {
		return nil
	}
	if err := h.store.SetJSON(ctx, HistoryKey, h.items); err != nil {
		h.logger.Warn("persist history failed", "error", err)
		return fmt.Errorf("save history: %w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// Items returns a copy of the log, newest first.
func (h *History) Items() []SessionItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneItems(h.items)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Dedupe drops entries that describe the same session as an earlier entry,
// keeping the first occurrence. Entries are the same session when they share
// a mode and their start and end round to the same second.
func Dedupe(items []SessionItem) []SessionItem {
	out := make([]SessionItem, 0, len(items))
	seen := make(map[sessionKey]struct{}, len(items))
	for _, it := range items {
		k := keyOf(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

type sessionKey struct {
	mode       Mode
	start, end int64
}

func keyOf(it SessionItem) sessionKey {
	return sessionKey{mode: it.Mode, start: roundSec(it.StartAt), end: roundSec(it.EndAt)}
}

// roundSec rounds half up, so 1500 is 2 and -1500 is -1.
func roundSec(ms int64) int64 {
	return int64(math.Floor((float64(ms) + 500) / 1000))
}

func bound(items []SessionItem, limit int) []SessionItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cloneItems(items []SessionItem) []SessionItem {
	out := make([]SessionItem, len(items))
	copy(out, items)
	return out
}
