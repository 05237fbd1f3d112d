// Package ui provides the terminal user interface for the pomodoro timer.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and user customization.
package ui

import (
	"strings"

	"pomodoro/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// helpLabel shows the first configured key, spelling out the space bar.
func helpLabel(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if keys[0] == " " {
		return "space"
	}
	return keys[0]
}

func binding(custom, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpLabel(keys), desc))
}

// =============================================================================
// Timer Keys
// =============================================================================

// TimerKeyMap defines keys for the main timer screen.
type TimerKeyMap struct {
	Toggle        key.Binding
	StartWork     key.Binding
	StartBreak    key.Binding
	Reset         key.Binding
	SwitchMode    key.Binding
	EditDurations key.Binding
	ToggleSound   key.Binding
	ToggleHistory key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultTimerKeyMap returns the default timer key bindings.
func DefaultTimerKeyMap() TimerKeyMap {
	return NewTimerKeyMap(&config.KeysConfig{})
}

// NewTimerKeyMap creates timer key bindings from config.
func NewTimerKeyMap(cfg *config.KeysConfig) TimerKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimerKeyMap{
		Toggle:        binding(cfg.Toggle, "start/pause", " ", "enter"),
		StartWork:     binding(cfg.StartWork, "start work", "w"),
		StartBreak:    binding(cfg.StartBreak, "start break", "b"),
		Reset:         binding(cfg.Reset, "reset", "r"),
		SwitchMode:    binding(cfg.SwitchMode, "switch mode", "m"),
		EditDurations: binding(cfg.EditDurations, "durations", "d"),
		ToggleSound:   binding(cfg.ToggleSound, "sound", "s"),
		ToggleHistory: binding(cfg.ToggleHistory, "history", "h"),
		Help:          binding(cfg.Help, "help", "?"),
		Quit:          binding(cfg.Quit, "quit", "q", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k TimerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.SwitchMode, k.ToggleHistory, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k TimerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.StartWork, k.StartBreak, k.Reset, k.SwitchMode},
		{k.EditDurations, k.ToggleSound, k.ToggleHistory},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Editor Keys
// =============================================================================

// EditorKeyMap defines keys for the duration editor.
type EditorKeyMap struct {
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultEditorKeyMap returns the default editor key bindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return NewEditorKeyMap(&config.KeysConfig{})
}

// NewEditorKeyMap creates editor key bindings from config.
func NewEditorKeyMap(cfg *config.KeysConfig) EditorKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return EditorKeyMap{
		Confirm:   binding(cfg.Confirm, "save", "enter"),
		Cancel:    binding(cfg.Cancel, "cancel", "esc"),
		NextField: binding(cfg.NextField, "next field", "tab"),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	}
}

// ShortHelp implements help.KeyMap.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Confirm, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.NextField, k.PrevField, k.Confirm, k.Cancel}}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
