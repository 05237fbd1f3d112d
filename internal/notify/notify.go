// Package notify shows desktop notifications and schedules them for the end
// of a session. It uses osascript on macOS and notify-send on Linux.
package notify

// Message is one desktop notification.
type Message struct {
	Title string
	Body  string
	// Sound names the sound to play. Empty uses the platform default.
	Sound string
}

// Sender delivers a notification immediately.
type Sender interface {
	Send(msg Message) error

	// IsSupported reports whether notifications can be shown at all.
	IsSupported() bool
}

type noopSender struct{}

func (noopSender) Send(Message) error { return nil }
func (noopSender) IsSupported() bool  { return false }

// NoopSender drops every message.
func NoopSender() Sender {
	return noopSender{}
}

// New returns the platform sender, or a no-op sender when the platform tool
// is missing.
func New() Sender {
	s := newPlatformSender()
	if s == nil || !s.IsSupported() {
		return noopSender{}
	}
	return s
}
