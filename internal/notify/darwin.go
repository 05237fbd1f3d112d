//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// darwinSender shows notifications through AppleScript.
type darwinSender struct{}

func newPlatformSender() Sender {
	return &darwinSender{}
}

func (s *darwinSender) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (s *darwinSender) Send(msg Message) error {
	cmd := exec.Command("osascript", "-e", appleScript(msg))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	return nil
}

func appleScript(msg Message) string {
	sound := msg.Sound
	if sound == "" {
		sound = "default"
	}
	return fmt.Sprintf(`display notification "%s" with title "%s" sound name "%s"`,
		escapeAppleScript(msg.Body), escapeAppleScript(msg.Title), escapeAppleScript(sound))
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
