package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
	keys   TimerKeyMap
	editor EditorKeyMap
}

// NewHelpOverlay creates a help overlay listing the configured keys.
func NewHelpOverlay(styles *Styles, keys TimerKeyMap, editor EditorKeyMap) *HelpOverlay {
	return &HelpOverlay{styles: styles, keys: keys, editor: editor}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 56
	if h.width > 0 {
		overlayWidth = min(56, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorAccent).
		Padding(1, 2).
		Width(overlayWidth)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	line := func(b key.Binding) string {
		return keyStyle.Render(b.Help().Key) + descStyle.Render(b.Help().Desc) + "\n"
	}

	var b strings.Builder
	b.WriteString(h.styles.PaneTitleStyle.Render("🍅 pomodoro - Keyboard Shortcuts"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Timer"))
	b.WriteString("\n")
	for _, k := range []key.Binding{h.keys.Toggle, h.keys.StartWork, h.keys.StartBreak, h.keys.Reset, h.keys.SwitchMode} {
		b.WriteString(line(k))
	}

	b.WriteString(sectionStyle.Render("Settings"))
	b.WriteString("\n")
	for _, k := range []key.Binding{h.keys.EditDurations, h.keys.ToggleSound, h.keys.ToggleHistory} {
		b.WriteString(line(k))
	}

	b.WriteString(sectionStyle.Render("Duration editor"))
	b.WriteString("\n")
	for _, k := range []key.Binding{h.editor.NextField, h.editor.PrevField, h.editor.Confirm, h.editor.Cancel} {
		b.WriteString(line(k))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true).
		Render("Press ? or Esc to close"))

	return RenderCentered(overlayStyle.Render(b.String()), h.width, h.height)
}

// RenderCentered centers content in the terminal
func RenderCentered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
