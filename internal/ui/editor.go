package ui

import (
	"fmt"
	"strconv"
	"strings"

	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldWorkMin = iota
	fieldWorkSec
	fieldBreakMin
	fieldBreakSec
	fieldCount
)

// DurationEditor edits the work and break lengths as minutes and seconds.
// Each field accepts 0..59; larger values are clamped.
type DurationEditor struct {
	styles *Styles
	keys   EditorKeyMap
	fields [fieldCount]textinput.Model
	focus  int
	err    string
}

// NewDurationEditor creates an editor with key bindings from keys.
func NewDurationEditor(styles *Styles, keys EditorKeyMap) *DurationEditor {
	e := &DurationEditor{styles: styles, keys: keys}
	for i := range e.fields {
		ti := textinput.New()
		ti.CharLimit = 2
		ti.Width = 3
		ti.Prompt = ""
		ti.Placeholder = "00"
		e.fields[i] = ti
	}
	return e
}

// Open fills the fields from d and focuses the first one.
func (e *DurationEditor) Open(d pomodoro.Durations) tea.Cmd {
	wm, ws := pomodoro.SplitMinSec(d.Work)
	bm, bs := pomodoro.SplitMinSec(d.Break)
	for i, v := range [fieldCount]int{wm, ws, bm, bs} {
		e.fields[i].SetValue(fmt.Sprintf("%02d", v))
	}
	e.err = ""
	return e.setFocus(fieldWorkMin)
}

func (e *DurationEditor) setFocus(i int) tea.Cmd {
	e.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range e.fields {
		if j == e.focus {
			cmd = e.fields[j].Focus()
			e.fields[j].CursorEnd()
		} else {
			e.fields[j].Blur()
		}
	}
	return cmd
}

// Value parses the fields. Empty fields count as zero.
func (e *DurationEditor) Value() (pomodoro.Durations, error) {
	var v [fieldCount]int
	for i, f := range e.fields {
		raw := strings.TrimSpace(f.Value())
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return pomodoro.Durations{}, fmt.Errorf("%q is not a number", raw)
		}
		v[i] = n
	}
	d := pomodoro.Durations{
		Work:  pomodoro.DurationFromMinSec(v[fieldWorkMin], v[fieldWorkSec]),
		Break: pomodoro.DurationFromMinSec(v[fieldBreakMin], v[fieldBreakSec]),
	}
	if err := d.Validate(); err != nil {
		return pomodoro.Durations{}, fmt.Errorf("sessions must be at least one second")
	}
	return d, nil
}

// editorResult is what a key press in the editor asks the app to do.
type editorResult int

const (
	editorContinue editorResult = iota
	editorSave
	editorCancel
)

// Update handles a key press.
func (e *DurationEditor) Update(msg tea.Msg) (editorResult, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		e.fields[e.focus], cmd = e.fields[e.focus].Update(msg)
		return editorContinue, cmd
	}

	switch {
	case key.Matches(km, e.keys.Cancel):
		return editorCancel, nil
	case key.Matches(km, e.keys.Confirm):
		if _, err := e.Value(); err != nil {
			e.err = err.Error()
			return editorContinue, nil
		}
		return editorSave, nil
	case key.Matches(km, e.keys.NextField):
		return editorContinue, e.setFocus(e.focus + 1)
	case key.Matches(km, e.keys.PrevField):
		return editorContinue, e.setFocus(e.focus - 1)
	}

	// Digits only.
	if km.Type == tea.KeyRunes {
		for _, r := range km.Runes {
			if r < '0' || r > '9' {
				return editorContinue, nil
			}
		}
	}
	e.err = ""
	var cmd tea.Cmd
	e.fields[e.focus], cmd = e.fields[e.focus].Update(msg)
	return editorContinue, cmd
}

// View renders the editor.
func (e *DurationEditor) View() string {
	st := e.styles
	field := func(i int) string {
		style := st.FieldStyle
		if i == e.focus {
			style = st.FieldFocused
		}
		return style.Render(e.fields[i].View())
	}
	row := func(label string, style lipgloss.Style, minField, secField int) string {
		return lipgloss.JoinHorizontal(lipgloss.Center,
			style.Width(8).Render(label),
			field(minField), " : ", field(secField),
		)
	}

	var b strings.Builder
	b.WriteString(st.PaneTitleStyle.Render("Session lengths (mm:ss)"))
	b.WriteString("\n")
	b.WriteString(row("Work", st.WorkStyle, fieldWorkMin, fieldWorkSec))
	b.WriteString("\n")
	b.WriteString(row("Break", st.BreakStyle, fieldBreakMin, fieldBreakSec))
	b.WriteString("\n")
	if e.err != "" {
		b.WriteString(st.ErrorStyle.Render(e.err))
		b.WriteString("\n")
	}
	b.WriteString(st.RenderHelp(
		e.keys.NextField.Help().Key, "next",
		e.keys.Confirm.Help().Key, "save",
		e.keys.Cancel.Help().Key, "cancel",
	))
	return st.PaneStyle.BorderForeground(st.ColorAccent).Render(b.String())
}
