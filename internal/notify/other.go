//go:build !darwin && !linux

package notify

// No native sender elsewhere; New falls back to the no-op sender.
func newPlatformSender() Sender {
	return nil
}
