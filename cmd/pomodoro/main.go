// Package main is the entry point for the pomodoro application. Without a
// subcommand it starts the TUI; subcommands drive the timer from scripts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	dataDir    string
	backend    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "A focus timer for your terminal",
	Long: `pomodoro alternates work and break sessions and alerts you when each one ends.

Run it without arguments for the interactive timer. Sessions end on time even
when the window is hidden or the process is restarted, because the deadline
is stored, not the countdown.

Run 'pomodoro serve' to keep a timer and its alerts alive in the background;
the status, start, pause, resume and reset commands then talk to it.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/pomodoro/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.pomodoro)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "store backend: file, sqlite or memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pomodoro version %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
