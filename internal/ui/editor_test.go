package ui

import (
	"strings"
	"testing"
	"time"

	"pomodoro/internal/config"
	"pomodoro/internal/pomodoro"

	"github.com/charmbracelet/bubbles/key"
)

func TestDurationEditor_Value(t *testing.T) {
	tests := []struct {
		name    string
		fields  [fieldCount]string
		want    pomodoro.Durations
		wantErr bool
	}{
		{"classic", [fieldCount]string{"25", "00", "05", "00"}, pomodoro.Durations{Work: 25 * time.Minute, Break: 5 * time.Minute}, false},
		{"seconds", [fieldCount]string{"0", "45", "0", "30"}, pomodoro.Durations{Work: 45 * time.Second, Break: 30 * time.Second}, false},
		{"empty minutes", [fieldCount]string{"", "10", "1", ""}, pomodoro.Durations{Work: 10 * time.Second, Break: time.Minute}, false},
		{"clamped", [fieldCount]string{"75", "99", "5", "0"}, pomodoro.Durations{Work: 59*time.Minute + 59*time.Second, Break: 5 * time.Minute}, false},
		{"zero work", [fieldCount]string{"0", "0", "5", "0"}, pomodoro.Durations{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewDurationEditor(createTestStyles(), DefaultEditorKeyMap())
			for i, v := range tt.fields {
				e.fields[i].SetValue(v)
			}
			got, err := e.Value()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Value() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Value() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDurationEditor_OpenPrefills(t *testing.T) {
	e := NewDurationEditor(createTestStyles(), DefaultEditorKeyMap())
	e.Open(pomodoro.Durations{Work: 50 * time.Minute, Break: 90 * time.Second})

	want := [fieldCount]string{"50", "00", "01", "30"}
	for i := range want {
		if got := e.fields[i].Value(); got != want[i] {
			t.Errorf("field %d = %q, want %q", i, got, want[i])
		}
	}
	if e.focus != fieldWorkMin || !e.fields[fieldWorkMin].Focused() {
		t.Error("first field should be focused")
	}
}

func TestDurationEditor_FieldNavigationWraps(t *testing.T) {
	e := NewDurationEditor(createTestStyles(), DefaultEditorKeyMap())
	e.Open(pomodoro.DefaultDurations())

	for i := 0; i < fieldCount; i++ {
		e.Update(keyMsg("tab"))
	}
	if e.focus != fieldWorkMin {
		t.Errorf("focus = %d after a full cycle, want %d", e.focus, fieldWorkMin)
	}
	e.setFocus(e.focus - 1)
	if e.focus != fieldBreakSec {
		t.Errorf("focus = %d, want last field", e.focus)
	}
}

func TestDurationEditor_RejectsInvalidOnConfirm(t *testing.T) {
	setupTest(t)
	e := NewDurationEditor(createTestStyles(), DefaultEditorKeyMap())
	e.Open(pomodoro.DefaultDurations())
	e.fields[fieldWorkMin].SetValue("0")
	e.fields[fieldWorkSec].SetValue("0")

	result, _ := e.Update(keyMsg("enter"))
	if result != editorContinue {
		t.Fatalf("result = %v, want the editor to stay open", result)
	}
	if !strings.Contains(e.View(), "at least one second") {
		t.Error("view should show the validation error")
	}
}

func TestDurationEditor_IgnoresLetters(t *testing.T) {
	e := NewDurationEditor(createTestStyles(), DefaultEditorKeyMap())
	e.Open(pomodoro.DefaultDurations())
	e.fields[fieldWorkMin].SetValue("2")

	e.Update(keyMsg("x"))
	if got := e.fields[fieldWorkMin].Value(); got != "2" {
		t.Errorf("field = %q, letters must be ignored", got)
	}
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		custom string
		want   []string
	}{
		{"", []string{"q", "ctrl+c"}},
		{"x", []string{"x"}},
		{"x, ctrl+q", []string{"x", "ctrl+q"}},
		{"space,enter", []string{" ", "enter"}},
		{" , ", []string{"q", "ctrl+c"}},
	}
	for _, tt := range tests {
		got := parseKeys(tt.custom, "q", "ctrl+c")
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseKeys(%q) = %q, want %q", tt.custom, got, tt.want)
		}
	}
}

func TestTimerKeyMapHelpLabels(t *testing.T) {
	keys := NewTimerKeyMap(&config.KeysConfig{StartWork: "f5"})
	if got := keys.Toggle.Help().Key; got != "space" {
		t.Errorf("toggle help = %q, want space", got)
	}
	if got := keys.StartWork.Help().Key; got != "f5" {
		t.Errorf("start work help = %q, want f5", got)
	}
	if !key.Matches(keyMsg("w"), DefaultTimerKeyMap().StartWork) {
		t.Error("w should start work by default")
	}
}

func TestFormatLength(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{25 * time.Minute, "25m"},
		{4*time.Minute + 30*time.Second, "4m30s"},
		{45 * time.Second, "45s"},
		{1499 * time.Millisecond, "1s"},
	}
	for _, tt := range tests {
		if got := formatLength(tt.d); got != tt.want {
			t.Errorf("formatLength(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
