package registry

// State is the lifecycle state of a registry entry.
type State uint8

const (
	// StateUninitialized means no instance exists and no construction is running.
	StateUninitialized State = iota
	// StateConstructing means one caller is running the builder.
	StateConstructing
	// StateReady means the instance is cached. Terminal until Reset.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConstructing:
		return "constructing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// attempt is one builder invocation. Waiters block on done; value and err
// are written before done is closed and never after.
type attempt struct {
	number int
	done   chan struct{}
	value  any
	err    error
}

// entry is the registry slot for one key. All fields are guarded by Registry.mu.
type entry struct {
	state    State
	value    any
	inflight *attempt
	attempts int
}
