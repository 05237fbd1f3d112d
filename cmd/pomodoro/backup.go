package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pomodoro/internal/backup"
	"pomodoro/internal/kvstore"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create and manage backups of the session data",
	Long: `Copy the timer state, the session history and the database into a
timestamped directory under the data directory's backups/ folder.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [BACKUP_NAME]",
	Short: "Restore the session data from a backup",
	Long: `Restore every data file from a backup. A safety backup of the current
data is created first. Stop any running pomodoro or daemon before restoring.`,
	Example: `  pomodoro restore 2025-12-15_143022_000
  pomodoro restore --latest --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	backupCmd.Flags().BoolP("list", "l", false, "list available backups")
	backupCmd.Flags().Int("prune", 0, "after backing up, keep only the N most recent backups")

	restoreCmd.Flags().Bool("latest", false, "restore from the most recent backup")
	restoreCmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")
}

func runBackup(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	keep, _ := cmd.Flags().GetInt("prune")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	manager := backup.NewManager(cfg.GetDataDir(), version)

	if list {
		return listBackups(out, manager)
	}

	if err := checkpointStore(); err != nil {
		return err
	}

	name, err := manager.Create()
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	info, err := manager.GetBackup(name)
	if err != nil {
		return fmt.Errorf("read backup info: %w", err)
	}

	fmt.Fprintf(out, "✓ Backup created: %s\n", name)
	fmt.Fprintf(out, "  Sessions: %d, Completed work sessions: %d\n",
		info.Stats["sessions"], info.Stats["completed_work"])
	fmt.Fprintf(out, "  Location: %s\n", info.Path)

	if keep > 0 {
		n, err := manager.Prune(keep)
		if err != nil {
			return fmt.Errorf("prune backups: %w", err)
		}
		if n > 0 {
			fmt.Fprintf(out, "  Pruned %d old backup(s)\n", n)
		}
	}
	return nil
}

// checkpointStore folds the sqlite write-ahead log into the main database
// file so the copied file is complete.
func checkpointStore() error {
	rt, err := newRuntime(nil, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if db, ok := rt.store.(*kvstore.SQLiteStore); ok {
		if err := db.Checkpoint(context.Background()); err != nil {
			return fmt.Errorf("checkpoint database: %w", err)
		}
	}
	return nil
}

func listBackups(w io.Writer, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintln(w, "Run 'pomodoro backup' to create one.")
		return nil
	}

	fmt.Fprintln(w, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(w, "  %s  (%s)   Sessions: %d\n", b.Name, formatAge(time.Since(b.CreatedAt)), b.Stats["sessions"])
	}
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	latest, _ := cmd.Flags().GetBool("latest")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	manager := backup.NewManager(cfg.GetDataDir(), version)

	var name string
	switch {
	case latest:
		backups, err := manager.List()
		if err != nil {
			return fmt.Errorf("list backups: %w", err)
		}
		if len(backups) == 0 {
			return fmt.Errorf("no backups available")
		}
		name = backups[0].Name
	case len(args) == 1:
		name = args[0]
	default:
		return fmt.Errorf("no backup specified: use 'pomodoro restore BACKUP_NAME' or --latest")
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Restoring from backup: %s\n", info.Name)
	fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Sessions: %d, Completed work sessions: %d\n\n",
		info.Stats["sessions"], info.Stats["completed_work"])

	if !force {
		ok, err := confirm(cmd.InOrStdin(), out, "⚠ This will overwrite your current data.\nContinue? [y/N] ")
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if !ok {
			fmt.Fprintln(out, "Restore cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "✓ Creating safety backup first...")
	if err := manager.Restore(name); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	fmt.Fprintf(out, "✓ Restored successfully from %s\n", name)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// formatAge returns a human-readable age like "3 hours ago".
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}
