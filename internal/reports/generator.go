package reports

import (
	"sort"
	"time"

	"pomodoro/internal/pomodoro"
)

// Source provides the session log, newest first. *pomodoro.History
// satisfies it.
type Source interface {
	Items() []pomodoro.SessionItem
}

// Generator creates reports from the session history.
type Generator struct {
	src Source
	now func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src, now: time.Now}
}

// SetNowFunc overrides the clock used for GeneratedAt.
func (g *Generator) SetNowFunc(now func() time.Time) {
	g.now = now
}

// GenerateDaily generates a report for the day containing date. A session
// belongs to the day it ended on.
func (g *Generator) GenerateDaily(date time.Time) *DailyReport {
	start := startOfDay(date)
	end := start.AddDate(0, 0, 1)

	r := &DailyReport{Date: start, Sessions: []SessionEntry{}, GeneratedAt: g.now()}
	for _, it := range sessionsIn(g.src.Items(), start, end, date.Location()) {
		d := it.Duration()
		if it.Mode == pomodoro.ModeWork {
			r.Work.add(d)
		} else {
			r.Break.add(d)
		}
		r.Sessions = append(r.Sessions, SessionEntry{
			Mode:     it.Mode,
			Start:    it.StartTime().In(date.Location()),
			End:      it.EndTime().In(date.Location()),
			Duration: d,
		})
	}
	return r
}

// GenerateWeekly generates a report for the week containing date.
func (g *Generator) GenerateWeekly(date time.Time) *WeeklyReport {
	start := startOfWeekSunday(date)
	end := start.AddDate(0, 0, 7)
	items := sessionsIn(g.src.Items(), start, end, date.Location())

	r := &WeeklyReport{
		StartDate:   start,
		EndDate:     end.Add(-time.Nanosecond),
		ByDay:       make([]DaySummary, 7),
		GeneratedAt: g.now(),
	}
	for i := range r.ByDay {
		day := start.AddDate(0, 0, i)
		r.ByDay[i] = DaySummary{Date: day.Format("2006-01-02"), DayOfWeek: day.Format("Mon")}
	}

	for _, it := range items {
		idx := dayIndexInRange(it.EndTime().In(date.Location()), start, 7)
		if idx < 0 {
			continue
		}
		d := it.Duration()
		if it.Mode == pomodoro.ModeWork {
			r.Work.add(d)
			r.ByDay[idx].WorkSessions++
			r.ByDay[idx].Focused += d
		} else {
			r.Break.add(d)
			r.ByDay[idx].BreakSessions++
		}
	}

	r.DailyAverage = r.Work.Total / 7
	for i := range r.ByDay {
		day := r.ByDay[i]
		if day.Focused > 0 && (r.BestDay == nil || day.Focused > r.BestDay.Focused) {
			r.BestDay = &day
		}
	}
	return r
}

// sessionsIn returns completed sessions that ended in [start, end), oldest
// first.
func sessionsIn(items []pomodoro.SessionItem, start, end time.Time, loc *time.Location) []pomodoro.SessionItem {
	var out []pomodoro.SessionItem
	for _, it := range items {
		if !it.Completed {
			continue
		}
		t := it.EndTime().In(loc)
		if !t.Before(start) && t.Before(end) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndAt < out[j].EndAt
	})
	return out
}

// startOfDay returns the start of the day (midnight).
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeekSunday returns the start of the week (Sunday).
func startOfWeekSunday(t time.Time) time.Time {
	t = startOfDay(t)
	return t.AddDate(0, 0, -int(t.Weekday()))
}

func dayIndexInRange(t time.Time, start time.Time, days int) int {
	for i := 0; i < days; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := start.AddDate(0, 0, i+1)
		if !t.Before(dayStart) && t.Before(dayEnd) {
			return i
		}
	}
	return -1
}
