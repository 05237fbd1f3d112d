// Package reports provides daily and weekly summaries of completed sessions.
package reports

import (
	"time"

	"pomodoro/internal/pomodoro"
)

// DailyReport contains aggregated sessions for a single day.
type DailyReport struct {
	Date        time.Time      `json:"date"`
	Work        SessionSummary `json:"work"`
	Break       SessionSummary `json:"break"`
	Sessions    []SessionEntry `json:"sessions"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// WeeklyReport contains aggregated sessions for a Sunday-based week.
type WeeklyReport struct {
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Work         SessionSummary `json:"work"`
	Break        SessionSummary `json:"break"`
	DailyAverage time.Duration  `json:"daily_average"` // focused time per day
	BestDay      *DaySummary    `json:"best_day,omitempty"`
	ByDay        []DaySummary   `json:"by_day"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// SessionSummary counts the sessions of one mode in a period.
type SessionSummary struct {
	Count   int           `json:"count"`
	Total   time.Duration `json:"total"`
	Longest time.Duration `json:"longest"`
}

// SessionEntry is one session as shown in a report.
type SessionEntry struct {
	Mode     pomodoro.Mode `json:"mode"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// DaySummary is one day of a weekly report.
type DaySummary struct {
	Date          string        `json:"date"`
	DayOfWeek     string        `json:"day_of_week"`
	WorkSessions  int           `json:"work_sessions"`
	BreakSessions int           `json:"break_sessions"`
	Focused       time.Duration `json:"focused"`
}

func (s *SessionSummary) add(d time.Duration) {
	s.Count++
	s.Total += d
	if d > s.Longest {
		s.Longest = d
	}
}
