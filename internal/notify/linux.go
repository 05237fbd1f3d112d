//go:build linux

package notify

import (
	"fmt"
	"os/exec"
)

// linuxSender shells out to notify-send.
type linuxSender struct{}

func newPlatformSender() Sender {
	return &linuxSender{}
}

func (s *linuxSender) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (s *linuxSender) Send(msg Message) error {
	cmd := exec.Command("notify-send", notifySendArgs(msg)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

// notifySendArgs builds the argument list. Whether the sound hint is honoured
// depends on the notification daemon.
func notifySendArgs(msg Message) []string {
	args := []string{"--app-name=pomodoro", "--urgency=normal"}
	if msg.Sound != "" {
		args = append(args, "--hint=string:sound-name:"+msg.Sound)
	}
	return append(args, msg.Title, msg.Body)
}
