package domain

// Screen is the tagged variant a presentation layer switches over.
type Screen string

const (
	ScreenHome    Screen = "home"
	ScreenInput   Screen = "input"
	ScreenLoading Screen = "loading"
	ScreenResult  Screen = "result"
	ScreenError   Screen = "error"
)

// Trigger names an event that drives the navigation state machine.
type Trigger string

const (
	TriggerStartInput   Trigger = "start_input"
	TriggerSubmit       Trigger = "submit"
	TriggerFetchSuccess Trigger = "fetch_success"
	TriggerFetchFailure Trigger = "fetch_failure"
	TriggerRestart      Trigger = "restart"
	TriggerRetry        Trigger = "retry"
)

// NavigationState is the single mutable record owned by a session's event loop.
type NavigationState struct {
	// Screen is the currently active screen.
	Screen Screen

	// LastResult is the most recent successful result.
	// It survives failures and restarts.
	LastResult *FortuneResult

	// IsRequestInFlight is true only while Screen == ScreenLoading.
	IsRequestInFlight bool

	// LastError describes the latest fetch failure; cleared on retry.
	LastError string

	// Validation is set when the latest submission was rejected locally.
	Validation *ValidationError

	// PersistError is set when the latest result could not be saved.
	PersistError string
}

// NewNavigationState returns the initial state (Home).
func NewNavigationState() *NavigationState {
	return &NavigationState{Screen: ScreenHome}
}

// Snapshot is a read-only copy of the navigation state handed to observers.
type Snapshot struct {
	SessionID         string           `json:"session_id,omitempty"`
	Screen            Screen           `json:"screen"`
	LastResult        *FortuneResult   `json:"last_result,omitempty"`
	IsRequestInFlight bool             `json:"is_request_in_flight"`
	HasError          bool             `json:"has_error"`
	LastError         string           `json:"last_error,omitempty"`
	Validation        *ValidationError `json:"validation,omitempty"`
	PersistError      string           `json:"persist_error,omitempty"`
	Version           uint64           `json:"version"`
}

// Snapshot copies the state; version is the machine's transition counter.
func (s *NavigationState) Snapshot(sessionID string, version uint64) Snapshot {
	snap := Snapshot{
		SessionID:         sessionID,
		Screen:            s.Screen,
		LastResult:        s.LastResult.Clone(),
		IsRequestInFlight: s.IsRequestInFlight,
		HasError:          s.Screen == ScreenError,
		LastError:         s.LastError,
		PersistError:      s.PersistError,
		Version:           version,
	}
	if s.Validation != nil {
		v := *s.Validation
		snap.Validation = &v
	}
	return snap
}

// CheckInvariants reports the first violated structural invariant, if any.
func (s *NavigationState) CheckInvariants() error {
	if s.Screen == ScreenResult && s.LastResult == nil {
		return &InvariantError{Rule: "result screen requires a result"}
	}
	if s.IsRequestInFlight && s.Screen != ScreenLoading {
		return &InvariantError{Rule: "in-flight request outside loading screen"}
	}
	return nil
}
