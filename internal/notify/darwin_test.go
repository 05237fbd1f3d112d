//go:build darwin

package notify

import "testing"

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello", "Hello"},
		{`Hello "World"`, `Hello \"World\"`},
		{`Path\to\file`, `Path\\to\\file`},
	}
	for _, tc := range tests {
		if got := escapeAppleScript(tc.input); got != tc.want {
			t.Errorf("escapeAppleScript(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestAppleScriptDefaultSound(t *testing.T) {
	got := appleScript(Message{Title: "T", Body: "B"})
	want := `display notification "B" with title "T" sound name "default"`
	if got != want {
		t.Fatalf("script = %s", got)
	}
}
