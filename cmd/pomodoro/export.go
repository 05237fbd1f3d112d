package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pomodoro/internal/fsutil"
	"pomodoro/internal/pomodoro"
	"pomodoro/internal/reports"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [DATE]",
	Short: "Generate a daily or weekly session report",
	Long: `Generate a report of finished sessions as Markdown or JSON.

DATE is YYYY-MM-DD and defaults to today. A weekly report covers the
Sunday-based week containing DATE.`,
	Example: `  pomodoro export
  pomodoro export 2025-12-14
  pomodoro export --weekly --format json --output weekly.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolP("weekly", "w", false, "generate a weekly report")
	exportCmd.Flags().StringP("format", "f", "markdown", "output format: markdown or json")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	weekly, _ := cmd.Flags().GetBool("weekly")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format = strings.ToLower(format)
	switch format {
	case "md":
		format = "markdown"
	case "markdown", "json":
	default:
		return fmt.Errorf("invalid format %q: use markdown or json", format)
	}

	date := time.Now()
	if len(args) == 1 {
		d, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
		}
		date = d
	}

	rt, err := newRuntime(nil, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	history := pomodoro.NewHistory(rt.store, rt.logger)
	if _, err := history.Load(context.Background()); err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	text, err := renderReport(reports.NewGenerator(history), date, weekly, format)
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, fsutil.DirPerm); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(output, []byte(text), fsutil.FilePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
	return nil
}

func renderReport(gen *reports.Generator, date time.Time, weekly bool, format string) (string, error) {
	if weekly {
		r := gen.GenerateWeekly(date)
		if format == "json" {
			data, err := reports.FormatWeeklyJSON(r)
			return string(data), err
		}
		return reports.FormatWeeklyMarkdown(r), nil
	}

	r := gen.GenerateDaily(date)
	if format == "json" {
		data, err := reports.FormatDailyJSON(r)
		return string(data), err
	}
	return reports.FormatDailyMarkdown(r), nil
}
