//go:build linux

package notify

import (
	"strings"
	"testing"
)

func TestNotifySendArgs(t *testing.T) {
	got := strings.Join(notifySendArgs(Message{Title: "Break finished", Body: "Back to work!", Sound: "bell"}), "|")
	want := "--app-name=pomodoro|--urgency=normal|--hint=string:sound-name:bell|Break finished|Back to work!"
	if got != want {
		t.Fatalf("args = %s\nwant   %s", got, want)
	}

	got = strings.Join(notifySendArgs(Message{Title: "a", Body: "b"}), "|")
	if strings.Contains(got, "sound-name") {
		t.Fatalf("default sound should not add a hint: %s", got)
	}
}
