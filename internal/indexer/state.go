package indexer

import (
	"errors"
	"fmt"
)

// State is the orchestrator's run phase.
type State string

const (
	StateIdle          State = "idle"
	StateDiscovering   State = "discovering"
	StateBatchIndexing State = "batch_indexing"
	StateSaving        State = "saving"
	StateCancelled     State = "cancelled"
	StateTimedOut      State = "timed_out"
)

var (
	// ErrAlreadyRunning is returned when a run is requested while another
	// run holds the orchestrator. At most one index run per workspace.
	ErrAlreadyRunning = errors.New("index run already in progress")

	// ErrCancelled is returned when a run was abandoned at a cooperative
	// cancellation point. The graph is partial but consistent.
	ErrCancelled = errors.New("index run cancelled")

	// ErrTimedOut is returned when the wall-clock limit won the race against
	// the run. The graph is partial but consistent; the run can be retried.
	ErrTimedOut = errors.New("index run timed out, retry to continue")
)

// transitions lists the legal state edges. Cancelled and TimedOut absorb the
// run they ended; a fresh run may start from either.
var transitions = map[State][]State{
	StateIdle:          {StateDiscovering},
	StateDiscovering:   {StateBatchIndexing, StateIdle},
	StateBatchIndexing: {StateSaving, StateCancelled, StateTimedOut},
	StateSaving:        {StateIdle},
	StateCancelled:     {StateDiscovering},
	StateTimedOut:      {StateDiscovering},
}

// transition moves the orchestrator to next, or reports the illegal edge.
// Caller holds the state mutex.
func (i *indexer) transition(next State) error {
	for _, allowed := range transitions[i.state] {
		if allowed == next {
			i.state = next
			return nil
		}
	}
	return fmt.Errorf("illegal state transition %s -> %s", i.state, next)
}

// runnable reports whether a new run may start from the current state.
func (s State) runnable() bool {
	switch s {
	case StateIdle, StateCancelled, StateTimedOut:
		return true
	}
	return false
}
