// Package api exposes the session clock over a small local HTTP API, so
// shell scripts and status bars can drive a timer owned by `pomodoro serve`.
package api

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"pomodoro/internal/pomodoro"
)

// Timer is the clock surface the API drives. *pomodoro.Clock implements it.
type Timer interface {
	State() pomodoro.State
	Reconcile(ctx context.Context) (pomodoro.State, error)
	Start(ctx context.Context, mode pomodoro.Mode) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Reset(ctx context.Context, mode pomodoro.Mode) error
	Durations() pomodoro.Durations
	SetDurations(ctx context.Context, d pomodoro.Durations) error
	History() *pomodoro.History
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(timer Timer, version string, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := &Handler{timer: timer, version: version, logger: logger}

	r.Get("/health", h.Health)
	r.Get("/state", h.State)
	r.Post("/start", h.Start)
	r.Post("/pause", h.Pause)
	r.Post("/resume", h.Resume)
	r.Post("/reset", h.Reset)
	r.Get("/history", h.History)
	r.Put("/durations", h.SetDurations)

	return r
}
