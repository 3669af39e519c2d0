package types

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage is returned when a locale has no translation bundle.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidProbeURL is returned when the reachability target cannot be probed.
	ErrInvalidProbeURL = errors.New("invalid probe url")

	// ErrMonitorStopped is returned when starting a monitor that was already stopped.
	ErrMonitorStopped = errors.New("monitor stopped")

	// ErrNoUserSession is returned by operations that need a logged-in user.
	ErrNoUserSession = errors.New("no user session")
)

// HTTPStatusError represents a non-2xx response from a backend endpoint.
type HTTPStatusError struct {
	Endpoint   string // Endpoint that was called
	StatusCode int    // HTTP status code
	Body       string // Truncated response body
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}

	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// Transient reports whether the failure is worth retrying.
func (e *HTTPStatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
