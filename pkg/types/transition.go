package types

import "time"

// Transition records one published AppState change.
type Transition struct {
	ID         string
	SessionID  string
	Generation int
	From       AppState
	To         AppState
	At         time.Time
}
