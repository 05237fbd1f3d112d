package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pomodoro/internal/api"
	"pomodoro/internal/kvstore"
	"pomodoro/internal/pomodoro"
	"pomodoro/internal/reports"
)

// newLocalController returns a controller whose wall clock moves one second
// per reading.
func newLocalController(t *testing.T) *localController {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	clock := pomodoro.New(pomodoro.Options{
		Store:     kvstore.NewMemoryStore(),
		Durations: pomodoro.Durations{Work: 25 * time.Minute, Break: 5 * time.Minute},
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	if _, err := clock.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return &localController{clock: clock}
}

func TestLocalController_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := newLocalController(t)

	resp, err := c.Start(ctx, pomodoro.ModeBreak)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !resp.IsRunning || resp.Mode != pomodoro.ModeBreak {
		t.Fatalf("after start: %+v", resp.State)
	}
	if resp.Durations.Break != "5m0s" {
		t.Errorf("durations = %+v", resp.Durations)
	}

	resp, err = c.Pause(ctx)
	if err != nil {
		t.Fatalf("Pause() error: %v", err)
	}
	if resp.IsRunning {
		t.Error("session should be paused")
	}
	if got := describeStatus(resp); got != "paused" {
		t.Errorf("describeStatus() = %q, want paused", got)
	}

	resp, err = c.Reset(ctx, "")
	if err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if resp.Mode != pomodoro.ModeBreak || resp.Remaining != "05:00" {
		t.Errorf("reset should keep the mode with full time, got %s %s", resp.Mode, resp.Remaining)
	}
	if got := describeStatus(resp); got != "ready" {
		t.Errorf("describeStatus() = %q, want ready", got)
	}
}

func TestLocalController_InvalidMode(t *testing.T) {
	c := newLocalController(t)
	_, err := c.Start(context.Background(), pomodoro.Mode("nap"))
	if !errors.Is(err, pomodoro.ErrInvalidMode) {
		t.Errorf("Start(nap) error = %v, want ErrInvalidMode", err)
	}
}

func TestLocalController_HistoryLimit(t *testing.T) {
	c := newLocalController(t)
	items, err := c.History(context.Background(), 5)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("fresh history has %d items", len(items))
	}
}

func TestDescribeStatus_Running(t *testing.T) {
	end := time.Date(2025, 3, 1, 9, 25, 0, 0, time.Local).UnixMilli()
	start := end - (25 * time.Minute).Milliseconds()
	resp := api.NewStateResponse(pomodoro.State{
		Mode:        pomodoro.ModeWork,
		IsRunning:   true,
		StartAt:     &start,
		EndAt:       &end,
		RemainingMs: (10 * time.Minute).Milliseconds(),
	}, pomodoro.DefaultDurations())

	if got := describeStatus(resp); got != "running (ends 09:25:00)" {
		t.Errorf("describeStatus() = %q", got)
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No sessions yet") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	printHistory(&buf, []pomodoro.SessionItem{{
		ID:        "a",
		Mode:      pomodoro.ModeWork,
		StartAt:   start.UnixMilli(),
		EndAt:     start.Add(25 * time.Minute).UnixMilli(),
		Completed: true,
	}})
	out := buf.String()
	for _, want := range []string{"Recent sessions (1)", "2025-03-01", "Work", "09:00 - 09:25", "25m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport(t *testing.T) {
	gen := reports.NewGenerator(pomodoro.NewHistory(kvstore.NewMemoryStore(), nil))
	date := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

	md, err := renderReport(gen, date, false, "markdown")
	if err != nil {
		t.Fatalf("renderReport() error: %v", err)
	}
	if !strings.Contains(md, "# Pomodoro report") {
		t.Errorf("markdown report = %q", md)
	}

	js, err := renderReport(gen, date, true, "json")
	if err != nil {
		t.Fatalf("renderReport() error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(js), "{") {
		t.Errorf("json report = %q", js)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Continue? ")
		if err != nil {
			t.Errorf("confirm(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
