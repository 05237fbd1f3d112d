package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"pomodoro/internal/config"
	"pomodoro/internal/fsutil"
	"pomodoro/internal/kvstore"
	"pomodoro/internal/notify"
	"pomodoro/internal/pomodoro"
)

// loadConfig reads the config file and applies the global flags over it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Text goes to w; when w is nil the log
// goes to cfg.Log.File, or nowhere.
func newLogger(cfg *config.Config, w io.Writer, json bool) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {}

	if w == nil {
		w = io.Discard
		if cfg.Log.File != "" {
			path := cfg.Log.File
			if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fsutil.FilePerm)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closer = func() { f.Close() }
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), closer, nil
}

// runtime holds the config, logger and store for one process.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   kvstore.Store
	clock   *pomodoro.Clock
	closers []func()
}

// newRuntime loads the config and opens the store. logTo receives the log;
// nil follows cfg.Log.File.
func newRuntime(logTo io.Writer, logJSON bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg, logTo, logJSON)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, closers: []func(){closeLog}}

	store, err := kvstore.Open(cfg.StoreOptions(logger))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = store
	rt.closers = append(rt.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store failed", "error", err)
		}
	})
	return rt, nil
}

// newClock builds the clock over the store. It does not load state. A nil
// notifier means no alerts.
func (rt *runtime) newClock(notifier pomodoro.Notifier, alarms chan<- pomodoro.Alarm) *pomodoro.Clock {
	soundName := rt.cfg.Notifications.SoundName
	if !rt.cfg.Notifications.Sound {
		soundName = ""
	}
	rt.clock = pomodoro.New(pomodoro.Options{
		Store:     rt.store,
		Notifier:  notifier,
		History:   pomodoro.NewHistory(rt.store, rt.logger),
		Durations: rt.cfg.Durations(),
		SoundName: soundName,
		Alarms:    alarms,
		Logger:    rt.logger,
	})
	return rt.clock
}

// newScheduler creates the alert scheduler and routes fired alerts back into
// the clock, so a session completes at its deadline even when nothing else
// is reconciling. With notifications disabled alerts still fire, silently.
func (rt *runtime) newScheduler() *notify.Scheduler {
	var sender notify.Sender
	if rt.cfg.Notifications.Enabled {
		sender = notify.New()
	}
	s := notify.NewScheduler(sender, rt.logger)
	s.OnFired(func(f pomodoro.Fired) {
		if rt.clock == nil {
			return
		}
		if _, err := rt.clock.HandleFired(context.Background(), f); err != nil {
			rt.logger.Warn("handle fired alert", "id", f.ID, "error", err)
		}
	})
	return s
}

// Close releases the store and the log file, in reverse order.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
