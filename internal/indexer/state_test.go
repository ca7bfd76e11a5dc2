package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	t.Parallel()

	legal := []struct{ from, to State }{
		{StateIdle, StateDiscovering},
		{StateDiscovering, StateBatchIndexing},
		{StateDiscovering, StateIdle},
		{StateBatchIndexing, StateSaving},
		{StateBatchIndexing, StateCancelled},
		{StateBatchIndexing, StateTimedOut},
		{StateSaving, StateIdle},
		{StateCancelled, StateDiscovering},
		{StateTimedOut, StateDiscovering},
	}
	for _, tc := range legal {
		i := &indexer{state: tc.from}
		assert.NoError(t, i.transition(tc.to), "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.to, i.state)
	}

	illegal := []struct{ from, to State }{
		{StateIdle, StateBatchIndexing},
		{StateIdle, StateSaving},
		{StateDiscovering, StateCancelled},
		{StateSaving, StateBatchIndexing},
		{StateCancelled, StateIdle},
		{StateTimedOut, StateSaving},
	}
	for _, tc := range illegal {
		i := &indexer{state: tc.from}
		assert.Error(t, i.transition(tc.to), "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, i.state)
	}
}

func TestStateRunnable(t *testing.T) {
	t.Parallel()

	assert.True(t, StateIdle.runnable())
	assert.True(t, StateCancelled.runnable())
	assert.True(t, StateTimedOut.runnable())
	assert.False(t, StateDiscovering.runnable())
	assert.False(t, StateBatchIndexing.runnable())
	assert.False(t, StateSaving.runnable())
}
