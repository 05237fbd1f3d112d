package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pomodoro/internal/pomodoro"
)

// StateResponse is the clock state plus display helpers.
type StateResponse struct {
	pomodoro.State
	Remaining string        `json:"remaining"`
	Durations DurationsBody `json:"durations"`
	// Warning carries an advisory failure; the transition was applied.
	Warning string `json:"warning,omitempty"`
}

// NewStateResponse describes s for display.
func NewStateResponse(s pomodoro.State, d pomodoro.Durations) StateResponse {
	return StateResponse{
		State:     s,
		Remaining: pomodoro.FormatRemaining(s.Remaining()),
		Durations: DurationsBody{Work: d.Work.String(), Break: d.Break.String()},
	}
}

// DurationsBody holds durations in Go syntax, e.g. "25m".
type DurationsBody struct {
	Work  string `json:"work"`
	Break string `json:"break"`
}

// ModeRequest selects a mode for /start and /reset.
type ModeRequest struct {
	Mode string `json:"mode"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Handler serves the timer routes.
type Handler struct {
	timer   Timer
	version string
	logger  *slog.Logger
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	s, err := h.timer.Reconcile(r.Context())
	h.respond(w, s, err)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	mode, ok := h.decodeMode(w, r, true)
	if !ok {
		return
	}
	h.transition(w, r, func(ctx context.Context) error { return h.timer.Start(ctx, mode) })
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timer.Pause)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timer.Resume)
}

// Reset defaults to the current mode when the body names none.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	mode, ok := h.decodeMode(w, r, false)
	if !ok {
		return
	}
	if mode == "" {
		mode = h.timer.State().Mode
	}
	h.transition(w, r, func(ctx context.Context) error { return h.timer.Reset(ctx, mode) })
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := pomodoro.MaxHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items := h.timer.History().Items()
	if len(items) > limit {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) SetDurations(w http.ResponseWriter, r *http.Request) {
	var body DurationsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	d := h.timer.Durations()
	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{{"work", body.Work, &d.Work}, {"break", body.Break, &d.Break}} {
		if f.raw == "" {
			continue
		}
		v, err := time.ParseDuration(f.raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s duration: %v", f.name, err))
			return
		}
		*f.dst = v
	}

	h.transition(w, r, func(ctx context.Context) error { return h.timer.SetDurations(ctx, d) })
}

// decodeMode reads a ModeRequest. An empty body is allowed when the mode is
// optional.
func (h *Handler) decodeMode(w http.ResponseWriter, r *http.Request, required bool) (pomodoro.Mode, bool) {
	var req ModeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && (required || r.ContentLength > 0) {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return "", false
		}
	}
	if req.Mode == "" && !required {
		return "", true
	}
	mode, err := pomodoro.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return mode, true
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context) error) {
	err := op(r.Context())
	if errors.Is(err, pomodoro.ErrInvalidMode) || errors.Is(err, pomodoro.ErrInvalidDuration) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, h.timer.State(), err)
}

func (h *Handler) respond(w http.ResponseWriter, s pomodoro.State, advisory error) {
	resp := NewStateResponse(s, h.timer.Durations())
	if advisory != nil {
		h.logger.Warn("transition degraded", "error", advisory)
		resp.Warning = advisory.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
