package ui

import (
	"fmt"
	"time"

	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// HistoryPane lists completed sessions, newest first.
type HistoryPane struct {
	styles *Styles
	table  table.Model
	count  int
}

// NewHistoryPane creates an empty history table.
func NewHistoryPane(styles *Styles) *HistoryPane {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Mode", Width: 6},
			{Title: "Started", Width: 12},
			{Title: "Ended", Width: 6},
			{Title: "Length", Width: 7},
		}),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeader
	ts.Selected = styles.TableSelected
	t.SetStyles(ts)

	return &HistoryPane{styles: styles, table: t}
}

// SetItems replaces the rows.
func (p *HistoryPane) SetItems(items []pomodoro.SessionItem) {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			it.Mode.Label(),
			it.StartTime().Format("Jan 02 15:04"),
			it.EndTime().Format("15:04"),
			formatLength(it.Duration()),
		})
	}
	p.table.SetRows(rows)
	p.count = len(items)
}

// SetHeight sets the number of visible rows.
func (p *HistoryPane) SetHeight(h int) {
	p.table.SetHeight(max(3, h))
}

// Update forwards navigation keys to the table.
func (p *HistoryPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

// View renders the pane.
func (p *HistoryPane) View() string {
	title := p.styles.PaneTitleStyle.Render(fmt.Sprintf("History (%d)", p.count))
	if p.count == 0 {
		return p.styles.PaneStyle.Render(title + "\n" + p.styles.HelpStyle.Render("No sessions yet"))
	}
	return p.styles.PaneStyle.Render(title + "\n" + p.table.View())
}

// formatLength renders a session length as "25m" or "4m30s".
func formatLength(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	switch {
	case m == 0:
		return fmt.Sprintf("%ds", s)
	case s == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dm%02ds", m, s)
	}
}
