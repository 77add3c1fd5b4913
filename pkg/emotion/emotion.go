// Package emotion defines the shared emotional-state contract between the
// conversation engine and the overlay UI. The state drives which sprite the
// overlay displays.
package emotion

// State is a single displayed emotional state.
type State string

// All displayable states.
const (
	StateIdle       State = "idle"
	StateHappy      State = "happy"
	StateSad        State = "sad"
	StateConfused   State = "confused"
	StateThinking   State = "thinking"
	StateProcessing State = "processing"
	StateResponding State = "responding"
	StateError      State = "error"
	StateListening  State = "listening"
)

// all is the closed set of valid states.
var all = map[State]struct{}{
	StateIdle:       {},
	StateHappy:      {},
	StateSad:        {},
	StateConfused:   {},
	StateThinking:   {},
	StateProcessing: {},
	StateResponding: {},
	StateError:      {},
	StateListening:  {},
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	_, ok := all[s]
	return ok
}

// String returns the state's wire representation.
func (s State) String() string {
	return string(s)
}
