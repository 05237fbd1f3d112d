package ui

import (
	"fmt"
	"strings"

	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

// TimerPane renders the countdown for the current session.
type TimerPane struct {
	styles *Styles
	width  int
}

// NewTimerPane creates a new timer pane.
func NewTimerPane(styles *Styles) *TimerPane {
	return &TimerPane{styles: styles}
}

// SetSize sets the pane width.
func (p *TimerPane) SetSize(width int) {
	p.width = width
}

// View renders s against the configured durations.
func (p *TimerPane) View(s pomodoro.State, d pomodoro.Durations, soundName string) string {
	st := p.styles
	modeStyle := st.ModeStyle(s.Mode)

	var b strings.Builder
	b.WriteString(modeStyle.Render(strings.ToUpper(s.Mode.Label()) + " SESSION"))
	b.WriteString("\n")
	b.WriteString(st.ClockStyle.Render(pomodoro.FormatRemaining(s.Remaining())))
	b.WriteString("\n")
	b.WriteString(p.renderBar(s, d.For(s.Mode).Milliseconds()))
	b.WriteString("\n\n")
	b.WriteString(p.renderStatus(s, d))
	b.WriteString("\n")

	sound := "default"
	if s.UseCustomSound && soundName != "" {
		sound = soundName
	}
	b.WriteString(st.StatLabelStyle.Render("Completed: ") + st.StatValueStyle.Render(fmt.Sprintf("%d", s.CompletedCount)))
	b.WriteString("   ")
	b.WriteString(st.StatLabelStyle.Render("Sound: ") + st.StatValueStyle.Render(sound))

	content := lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String())
	style := st.PaneStyle.BorderForeground(st.ModeColor(s.Mode))
	if p.width > 0 {
		style = style.Width(max(20, p.width-2))
	}
	return style.Render(content)
}

func (p *TimerPane) renderStatus(s pomodoro.State, d pomodoro.Durations) string {
	switch {
	case s.IsRunning:
		return p.styles.RunningStyle.Render("● running") +
			p.styles.StatLabelStyle.Render("  ends "+s.EndTime().Format("15:04"))
	case s.RemainingMs > 0 && s.RemainingMs < d.For(s.Mode).Milliseconds():
		return p.styles.PausedStyle.Render("❚❚ paused")
	default:
		return p.styles.PausedStyle.Render("○ ready")
	}
}

// renderBar draws elapsed time as a filled bar.
func (p *TimerPane) renderBar(s pomodoro.State, fullMs int64) string {
	width := barWidth
	if p.width > 0 {
		width = min(barWidth, max(10, p.width-8))
	}

	filled := 0
	if fullMs > 0 {
		elapsed := fullMs - s.RemainingMs
		if elapsed < 0 {
			elapsed = 0
		}
		filled = int(int64(width) * elapsed / fullMs)
	}
	filled = min(filled, width)

	return p.styles.ModeStyle(s.Mode).Render(strings.Repeat("█", filled)) +
		p.styles.BarEmptyStyle.Render(strings.Repeat("░", width-filled))
}
