package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"pomodoro/internal/api"
	"pomodoro/internal/pomodoro"

	"github.com/spf13/cobra"
)

// controller is the timer as seen by the one-shot commands: either a running
// daemon or the local store.
type controller interface {
	State(ctx context.Context) (api.StateResponse, error)
	Start(ctx context.Context, mode pomodoro.Mode) (api.StateResponse, error)
	Pause(ctx context.Context) (api.StateResponse, error)
	Resume(ctx context.Context) (api.StateResponse, error)
	Reset(ctx context.Context, mode pomodoro.Mode) (api.StateResponse, error)
	History(ctx context.Context, limit int) ([]pomodoro.SessionItem, error)
}

// localController drives a clock over the local store. Nothing stays alive
// to deliver the alert, so a started session only completes when the next
// process loads the state.
type localController struct {
	clock *pomodoro.Clock
}

func (l *localController) respond(err error) (api.StateResponse, error) {
	if errors.Is(err, pomodoro.ErrInvalidMode) || errors.Is(err, pomodoro.ErrInvalidDuration) {
		return api.StateResponse{}, err
	}
	resp := api.NewStateResponse(l.clock.State(), l.clock.Durations())
	if err != nil {
		resp.Warning = err.Error()
	}
	return resp, nil
}

func (l *localController) State(ctx context.Context) (api.StateResponse, error) {
	_, err := l.clock.Reconcile(ctx)
	return l.respond(err)
}

func (l *localController) Start(ctx context.Context, mode pomodoro.Mode) (api.StateResponse, error) {
	return l.respond(l.clock.Start(ctx, mode))
}

func (l *localController) Pause(ctx context.Context) (api.StateResponse, error) {
	return l.respond(l.clock.Pause(ctx))
}

func (l *localController) Resume(ctx context.Context) (api.StateResponse, error) {
	return l.respond(l.clock.Resume(ctx))
}

func (l *localController) Reset(ctx context.Context, mode pomodoro.Mode) (api.StateResponse, error) {
	if mode == "" {
		mode = l.clock.State().Mode
	}
	return l.respond(l.clock.Reset(ctx, mode))
}

func (l *localController) History(_ context.Context, limit int) ([]pomodoro.SessionItem, error) {
	items := l.clock.History().Items()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// withController runs fn against the daemon when one answers, otherwise
// against the local store.
func withController(cmd *cobra.Command, fn func(ctx context.Context, c controller) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client := api.NewClient(cfg.Server.Addr)
	if err := client.Health(ctx); err == nil {
		return fn(ctx, client)
	}

	rt, err := newRuntime(nil, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	clock := rt.newClock(nil, nil)
	if _, err := clock.Load(ctx); err != nil {
		if errors.Is(err, pomodoro.ErrPersistenceUnavailable) {
			return err
		}
		rt.logger.Warn("load state", "error", err)
	}
	return fn(ctx, &localController{clock: clock})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctx context.Context, c controller) error {
			resp, err := c.State(ctx)
			if err != nil {
				return err
			}
			return printState(cmd, resp)
		})
	},
}

var startCmd = &cobra.Command{
	Use:   "start [work|break]",
	Short: "Start a session with its full duration",
	Long: `Start a work or break session with its full duration, replacing whatever
is running. The mode defaults to work.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := pomodoro.ModeWork
		if len(args) == 1 {
			m, err := pomodoro.ParseMode(args[0])
			if err != nil {
				return err
			}
			mode = m
		}
		return transition(cmd, func(ctx context.Context, c controller) (api.StateResponse, error) {
			return c.Start(ctx, mode)
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, func(ctx context.Context, c controller) (api.StateResponse, error) {
			return c.Pause(ctx)
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, func(ctx context.Context, c controller) (api.StateResponse, error) {
			return c.Resume(ctx)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset [work|break]",
	Short: "Stop the timer and restore the full duration",
	Long: `Stop the timer and restore the full duration of the given mode, or of the
current mode when none is given. The session is not recorded in the history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var mode pomodoro.Mode
		if len(args) == 1 {
			m, err := pomodoro.ParseMode(args[0])
			if err != nil {
				return err
			}
			mode = m
		}
		return transition(cmd, func(ctx context.Context, c controller) (api.StateResponse, error) {
			return c.Reset(ctx, mode)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withController(cmd, func(ctx context.Context, c controller) error {
			items, err := c.History(ctx, limit)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSONTo(cmd.OutOrStdout(), items)
			}
			printHistory(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{statusCmd, startCmd, pauseCmd, resumeCmd, resetCmd, historyCmd} {
		c.Flags().Bool("json", false, "print JSON")
	}
	historyCmd.Flags().IntP("limit", "n", 10, "number of sessions to show")
}

// transition runs a state change and prints the resulting state. A local
// start warns that no alert will fire.
func transition(cmd *cobra.Command, op func(ctx context.Context, c controller) (api.StateResponse, error)) error {
	return withController(cmd, func(ctx context.Context, c controller) error {
		resp, err := op(ctx, c)
		if err != nil {
			return err
		}
		if _, local := c.(*localController); local && resp.IsRunning {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ No daemon running: the deadline is saved but no alert will fire.")
			fmt.Fprintln(cmd.ErrOrStderr(), "  Run 'pomodoro serve' or keep 'pomodoro' open to be alerted.")
		}
		return printState(cmd, resp)
	})
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printState(cmd *cobra.Command, resp api.StateResponse) error {
	if jsonOutput(cmd) {
		return writeJSONTo(cmd.OutOrStdout(), resp)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s  %s\n", resp.Mode.Label(), resp.Remaining, describeStatus(resp))
	fmt.Fprintf(w, "Completed work sessions: %d\n", resp.CompletedCount)
	if resp.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", resp.Warning)
	}
	return nil
}

// describeStatus tells a paused session from a fresh one by comparing the
// remaining time with the full duration of the mode.
func describeStatus(resp api.StateResponse) string {
	if resp.IsRunning {
		return "running (ends " + resp.EndTime().Format("15:04:05") + ")"
	}
	raw := resp.Durations.Work
	if resp.Mode == pomodoro.ModeBreak {
		raw = resp.Durations.Break
	}
	full, err := time.ParseDuration(raw)
	if err == nil && resp.State.Remaining() < full {
		return "paused"
	}
	return "ready"
}

func printHistory(w io.Writer, items []pomodoro.SessionItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No sessions yet.")
		return
	}
	fmt.Fprintf(w, "Recent sessions (%d):\n\n", len(items))
	for _, it := range items {
		fmt.Fprintf(w, "  %s  %-5s  %s - %s  %s\n",
			it.EndTime().Format("2006-01-02"),
			it.Mode.Label(),
			it.StartTime().Format("15:04"),
			it.EndTime().Format("15:04"),
			it.Duration().Round(time.Second))
	}
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
