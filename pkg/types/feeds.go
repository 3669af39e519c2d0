package types

import (
	"time"

	json "github.com/goccy/go-json"
)

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Reachability is the coarse network connectivity signal.
type Reachability int

const (
	ReachabilityUnknown Reachability = iota
	Reachable
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// MaintenanceStatus is the server-controlled kill-switch status.
type MaintenanceStatus int

const (
	MaintenanceUnknown MaintenanceStatus = iota
	MaintenanceEnabled
	MaintenanceDisabled
)

func (m MaintenanceStatus) String() string {
	switch m {
	case MaintenanceEnabled:
		return "enabled"
	case MaintenanceDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Maintenance is a maintenance feed event. Message is set when Status is enabled.
type Maintenance struct {
	Status  MaintenanceStatus
	Message string
}

// MaintenanceOn returns an enabled maintenance event.
func MaintenanceOn(message string) Maintenance {
	return Maintenance{Status: MaintenanceEnabled, Message: message}
}

// MaintenanceOff returns a disabled maintenance event.
func MaintenanceOff() Maintenance {
	return Maintenance{Status: MaintenanceDisabled}
}

// VersionInfo is a server-advertised version snapshot. Empty strings mean no constraint.
type VersionInfo struct {
	Required string `json:"required,omitempty"`
	Current  string `json:"current,omitempty"`
}

// ConnectionState is the state of one backend channel.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (c ConnectionState) String() string {
	switch c {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// CatalogPhase is the lifecycle phase of the sports catalog.
type CatalogPhase int

const (
	CatalogIdle CatalogPhase = iota
	CatalogLoading
	CatalogLoaded
	CatalogFailed
)

func (p CatalogPhase) String() string {
	switch p {
	case CatalogLoading:
		return "loading"
	case CatalogLoaded:
		return "loaded"
	case CatalogFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Sport is one entry of the sports catalog.
type Sport struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventsCount int    `json:"eventsCount"`
	Live        bool   `json:"live,omitempty"`
}

// CatalogState is a catalog lifecycle event. Sports is set when Phase is loaded.
type CatalogState struct {
	Phase  CatalogPhase
	Sports []Sport
}

// UserProfile is the logged-in user. A nil *UserProfile means no session.
type UserProfile struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Currency string `json:"currency,omitempty"`
}

// SessionExpiration describes a server-initiated end of the user session.
type SessionExpiration struct {
	UserID    string
	Reason    string
	ExpiredAt time.Time
}
