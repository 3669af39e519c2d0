package types

import "fmt"

// StateKind identifies the active variant of AppState.
type StateKind int

const (
	StateInitializing StateKind = iota
	StateSplashLoading
	StateNetworkUnavailable
	StateMaintenanceMode
	StateUpdateRequired
	StateUpdateAvailable
	StateServicesConnecting
	StateReady
	StateError
)

var stateKindNames = map[StateKind]string{
	StateInitializing:       "initializing",
	StateSplashLoading:      "splash_loading",
	StateNetworkUnavailable: "network_unavailable",
	StateMaintenanceMode:    "maintenance_mode",
	StateUpdateRequired:     "update_required",
	StateUpdateAvailable:    "update_available",
	StateServicesConnecting: "services_connecting",
	StateReady:              "ready",
	StateError:              "error",
}

// AllStateKinds lists every variant in declaration order.
func AllStateKinds() []StateKind {
	return []StateKind{
		StateInitializing,
		StateSplashLoading,
		StateNetworkUnavailable,
		StateMaintenanceMode,
		StateUpdateRequired,
		StateUpdateAvailable,
		StateServicesConnecting,
		StateReady,
		StateError,
	}
}

func (k StateKind) String() string {
	name, ok := stateKindNames[k]
	if !ok {
		return fmt.Sprintf("state_kind(%d)", int(k))
	}
	return name
}

// ErrorKind classifies an unrecoverable boot failure.
type ErrorKind string

const (
	ErrorNone                       ErrorKind = ""
	ErrorSportsLoadingFailed        ErrorKind = "sportsLoadingFailed"
	ErrorServiceConnectionFailed    ErrorKind = "serviceConnectionFailed"
	ErrorConfigurationLoadFailed    ErrorKind = "configurationLoadFailed"
	ErrorMaintenanceModeCheckFailed ErrorKind = "maintenanceModeCheckFailed"
)

// AppState is the top-level screen state of the application.
// Message is only meaningful for StateMaintenanceMode and Error only for StateError.
// The zero value is the Initializing state.
type AppState struct {
	Kind    StateKind `json:"-"`
	Message string    `json:"message,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`
}

// Initializing returns the state before boot starts.
func Initializing() AppState { return AppState{Kind: StateInitializing} }

// SplashLoading returns the state while the network monitor resolves.
func SplashLoading() AppState { return AppState{Kind: StateSplashLoading} }

// NetworkUnavailable returns the offline state.
func NetworkUnavailable() AppState { return AppState{Kind: StateNetworkUnavailable} }

// MaintenanceMode returns the maintenance state carrying the server message.
func MaintenanceMode(message string) AppState {
	return AppState{Kind: StateMaintenanceMode, Message: message}
}

// UpdateRequired returns the blocking forced-update state.
func UpdateRequired() AppState { return AppState{Kind: StateUpdateRequired} }

// UpdateAvailable returns the dismissible update state.
func UpdateAvailable() AppState { return AppState{Kind: StateUpdateAvailable} }

// ServicesConnecting returns the parallel loading state.
func ServicesConnecting() AppState { return AppState{Kind: StateServicesConnecting} }

// Ready returns the usable state.
func Ready() AppState { return AppState{Kind: StateReady} }

// Failed returns the error state for the given kind.
func Failed(kind ErrorKind) AppState { return AppState{Kind: StateError, Error: kind} }

// Is reports whether the state is of the given kind.
func (s AppState) Is(kind StateKind) bool {
	return s.Kind == kind
}

// IsError reports whether the state is Error(*).
func (s AppState) IsError() bool {
	return s.Kind == StateError
}

// IsBlocking reports whether the state is a full-screen takeover.
func (s AppState) IsBlocking() bool {
	return s.Kind == StateMaintenanceMode || s.Kind == StateUpdateRequired
}

func (s AppState) String() string {
	switch s.Kind {
	case StateMaintenanceMode:
		return fmt.Sprintf("%s(%q)", s.Kind, s.Message)
	case StateError:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Error)
	default:
		return s.Kind.String()
	}
}

// MarshalJSON renders the state with its kind name.
func (s AppState) MarshalJSON() ([]byte, error) {
	type wire struct {
		State   string    `json:"state"`
		Message string    `json:"message,omitempty"`
		Error   ErrorKind `json:"error,omitempty"`
	}
	return marshalJSON(wire{State: s.Kind.String(), Message: s.Message, Error: s.Error})
}
