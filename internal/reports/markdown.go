package reports

import (
	"fmt"
	"strings"
	"time"
)

// FormatDailyMarkdown renders a daily report.
func FormatDailyMarkdown(r *DailyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pomodoro report: %s\n\n", r.Date.Format("Monday, January 2, 2006"))
	writeSummary(&b, r.Work, r.Break)

	b.WriteString("\n## Sessions\n\n")
	if len(r.Sessions) == 0 {
		b.WriteString("_No completed sessions._\n")
		return b.String()
	}
	b.WriteString("| Mode | Start | End | Length |\n")
	b.WriteString("|------|-------|-----|--------|\n")
	for _, s := range r.Sessions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			s.Mode.Label(), s.Start.Format("15:04"), s.End.Format("15:04"), FormatDuration(s.Duration))
	}
	return b.String()
}

// FormatWeeklyMarkdown renders a weekly report.
func FormatWeeklyMarkdown(r *WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pomodoro report: week of %s\n\n", r.StartDate.Format("January 2, 2006"))
	writeSummary(&b, r.Work, r.Break)
	fmt.Fprintf(&b, "- Daily average focus: %s\n", FormatDuration(r.DailyAverage))
	if r.BestDay != nil {
		fmt.Fprintf(&b, "- Best day: %s (%s)\n", r.BestDay.DayOfWeek, FormatDuration(r.BestDay.Focused))
	}

	b.WriteString("\n## By day\n\n")
	b.WriteString("| Day | Date | Work | Break | Focused |\n")
	b.WriteString("|-----|------|------|-------|---------|\n")
	for _, d := range r.ByDay {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
			d.DayOfWeek, d.Date, d.WorkSessions, d.BreakSessions, FormatDuration(d.Focused))
	}
	return b.String()
}

func writeSummary(b *strings.Builder, work, brk SessionSummary) {
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- Work sessions: %d (%s focused)\n", work.Count, FormatDuration(work.Total))
	fmt.Fprintf(b, "- Breaks: %d (%s)\n", brk.Count, FormatDuration(brk.Total))
	if work.Longest > 0 {
		fmt.Fprintf(b, "- Longest session: %s\n", FormatDuration(work.Longest))
	}
}

// FormatDuration renders d as "1h 05m", "25m" or "45s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		if s := int(d.Seconds()) % 60; s != 0 {
			return fmt.Sprintf("%dm %02ds", int(d.Minutes()), s)
		}
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
