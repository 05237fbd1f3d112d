package ui

import (
	"pomodoro/internal/config"
	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorWork      lipgloss.Color
	ColorBreak     lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	TitleStyle     lipgloss.Style
	PaneStyle      lipgloss.Style
	PaneTitleStyle lipgloss.Style

	WorkStyle      lipgloss.Style
	BreakStyle     lipgloss.Style
	ClockStyle     lipgloss.Style
	RunningStyle   lipgloss.Style
	PausedStyle    lipgloss.Style
	BarEmptyStyle  lipgloss.Style
	AlarmStyle     lipgloss.Style
	WarningStyle   lipgloss.Style
	FieldStyle     lipgloss.Style
	FieldFocused   lipgloss.Style
	TableHeader    lipgloss.Style
	TableSelected  lipgloss.Style
	HelpStyle      lipgloss.Style
	HelpKeyStyle   lipgloss.Style
	StatusStyle    lipgloss.Style
	ErrorStyle     lipgloss.Style
	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorWork = colorOrDefault(theme.Work, "#EF4444")
	s.ColorBreak = colorOrDefault(theme.Break, "#10B981")
	s.ColorAccent = colorOrDefault(theme.Accent, "#7C3AED")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")

	s.ColorBg = colorOrDefault(theme.Background, "#1F2937")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = colorOrDefault(theme.Text, "#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	s.initComponentStyles()
	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorAccent).
		Padding(0, 1)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorAccent).
		MarginBottom(1)

	s.WorkStyle = lipgloss.NewStyle().
		Foreground(s.ColorWork).
		Bold(true)

	s.BreakStyle = lipgloss.NewStyle().
		Foreground(s.ColorBreak).
		Bold(true)

	s.ClockStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true).
		Padding(1, 4)

	s.RunningStyle = lipgloss.NewStyle().
		Foreground(s.ColorBreak)

	s.PausedStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.BarEmptyStyle = lipgloss.NewStyle().
		Foreground(s.ColorBgLight)

	s.AlarmStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorWarning).
		Padding(0, 1)

	s.WarningStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.FieldStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.FieldFocused = s.FieldStyle.
		BorderForeground(s.ColorAccent)

	s.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorAccent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(s.ColorMuted)

	s.TableSelected = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Background(s.ColorBgLight)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorBreak).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)
}

// ModeStyle returns the accent style for a session mode.
func (s *Styles) ModeStyle(m pomodoro.Mode) lipgloss.Style {
	if m == pomodoro.ModeBreak {
		return s.BreakStyle
	}
	return s.WorkStyle
}

// ModeColor returns the theme color for a session mode.
func (s *Styles) ModeColor(m pomodoro.Mode) lipgloss.Color {
	if m == pomodoro.ModeBreak {
		return s.ColorBreak
	}
	return s.ColorWork
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
