package pomodoro

import "errors"

// Errors returned by the clock and its collaborators. None of them leaves the
// state machine in an inconsistent state: a transition that reports
// ErrSchedulingFailure or ErrPersistenceUnavailable has still been applied.
var (
	// ErrPermissionDenied means desktop alerts cannot be shown. The timer
	// keeps working; only the background alert is lost.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrPersistenceUnavailable wraps store read/write failures.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrSchedulingFailure wraps notifier schedule/cancel failures.
	ErrSchedulingFailure = errors.New("alert scheduling failed")

	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidDuration = errors.New("invalid duration")
)
