package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pomodoro/internal/api"
	"pomodoro/internal/config"
	"pomodoro/internal/pomodoro"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timer as a background daemon with an HTTP API",
	Long: `Keep a timer and its alerts alive without the interactive UI. The status,
start, pause, resume, reset and history commands talk to it when it runs.

Logs are written to stdout as JSON.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr from config, "+config.DefaultServerAddr+")")
}

// Daemon pulses are only a backstop for the scheduled alert.
const minDaemonTick = time.Second

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(os.Stdout, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = rt.cfg.Server.Addr
	}

	scheduler := rt.newScheduler()
	defer scheduler.Close()
	if rt.cfg.Notifications.Enabled {
		if err := scheduler.CheckPermission(); err != nil {
			logger.Warn("desktop alerts unavailable", "error", err)
		}
	}

	alarms := make(chan pomodoro.Alarm, 8)
	clock := rt.newClock(scheduler, alarms)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := clock.Load(ctx)
	if err != nil {
		logger.Warn("load state", "error", err)
	}
	logger.Info("timer loaded", "mode", state.Mode, "running", state.IsRunning, "completed", state.CompletedCount)

	interval := rt.cfg.Timer.TickInterval
	if interval < minDaemonTick {
		interval = minDaemonTick
	}
	ticker := pomodoro.NewTicker(clock, interval)
	ticker.OnPulse(func(s pomodoro.State, err error) {
		if err != nil {
			logger.Warn("reconcile failed", "error", err)
			return
		}
		logger.Debug("pulse", "mode", s.Mode, "remaining_ms", s.RemainingMs)
	})
	go ticker.Run(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case a := <-alarms:
				logger.Info("session completed",
					"mode", a.Mode,
					"id", a.Item.ID,
					"duration", a.Item.Duration().String(),
					"message", a.Message)
			}
		}
	}()

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(clock, version, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pomodoro daemon starting", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
