package immersive

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionRequestFailed is returned when the platform refuses a session.
	ErrSessionRequestFailed = errors.New("session request failed")
	// ErrAlreadyPresenting is returned by Present while a session is requested or active.
	ErrAlreadyPresenting = errors.New("already presenting")
	// ErrLoadNeverCompleted is returned when the content loader reports a failure.
	ErrLoadNeverCompleted = errors.New("content load never completed")
	// ErrSessionEnded is returned by Present when the session ended before presenting began.
	ErrSessionEnded = errors.New("session ended before presenting")
	// ErrNoScene is returned when Present is called without a scene.
	ErrNoScene = errors.New("no scene to present")
)

// SessionError records the operation that failed. Match the cause with errors.Is against the
// sentinel errors of this package.
type SessionError struct {
	// Op is the operation that failed, e.g. "present".
	Op string
	// Session is the session ID, empty if no session was granted.
	Session string
	// Cause is the underlying error.
	Cause error
}

func (e *SessionError) Error() string {
	base := fmt.Sprintf("[immersive] %s", e.Op)
	if e.Session != "" {
		base += fmt.Sprintf(" (session %s)", e.Session)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}
