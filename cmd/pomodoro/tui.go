package main

import (
	"pomodoro/internal/pomodoro"
	"pomodoro/internal/ui"

	"github.com/spf13/cobra"
)

// runTUI starts the interactive timer.
func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(nil, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	scheduler := rt.newScheduler()
	defer scheduler.Close()

	alarms := make(chan pomodoro.Alarm, 8)
	clock := rt.newClock(scheduler, alarms)
	ticker := pomodoro.NewTicker(clock, rt.cfg.Timer.TickInterval)

	cfg := rt.cfg
	appCfg := &ui.AppConfig{
		Keys:      &cfg.Keys,
		SoundName: cfg.Notifications.SoundName,
		SaveDurations: func(d pomodoro.Durations) error {
			cfg.SetDurations(d)
			return cfg.Save()
		},
	}
	if cfg.Notifications.Enabled {
		appCfg.CheckPermission = scheduler.CheckPermission
	}

	return ui.Run(clock, ticker, alarms, ui.NewStyles(cfg), appCfg)
}
