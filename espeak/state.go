package espeak

// State is the lifecycle state of a Phonemizer's engine.
type State int

const (
	// StateUninitialized means the engine has never been initialized.
	StateUninitialized State = iota
	// StateInitialized means the engine is ready for conversions.
	StateInitialized
	// StateTerminated means the engine was torn down by Terminate. Either
	// initialization call moves it back to StateInitialized.
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
