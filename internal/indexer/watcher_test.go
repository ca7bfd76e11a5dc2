package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscope/railscope/internal/config"
)

func TestWatcher_DebounceCoalescesBurst(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	cfg := config.Default()
	idx, err := New(root, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	w, err := NewWatcher(idx, root, idx.Discovery(), 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// A burst of writes inside one debounce window ends up in a single
	// incremental run.
	writeFixture(t, root, "app/models/tag.rb", "class Tag < ApplicationRecord\nend\n")
	writeFixture(t, root, "app/models/label.rb", "class Label < ApplicationRecord\nend\n")
	writeFixture(t, root, "vendor/gem/skip.rb", "class Skip\nend\n")

	require.Eventually(t, func() bool {
		return idx.Graph().Class("Tag") != nil && idx.Graph().Class("Label") != nil
	}, 5*time.Second, 20*time.Millisecond)

	// Ignored paths never reach the graph.
	assert.Nil(t, idx.Graph().Class("Skip"))
}

func TestWatcher_KeepsChangeSetWhileRunActive(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx, err := New(root, config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	w, err := NewWatcher(idx, root, idx.Discovery(), 30*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Simulate a full run holding the orchestrator while a file changes.
	impl := idx.(*indexer)
	impl.stateMu.Lock()
	impl.state = StateBatchIndexing
	impl.stateMu.Unlock()

	writeFixture(t, root, "app/models/badge.rb", "class Badge < ApplicationRecord\nend\n")

	// Long enough for at least one deferred reindex attempt.
	time.Sleep(150 * time.Millisecond)
	assert.Nil(t, idx.Graph().Class("Badge"))

	impl.stateMu.Lock()
	impl.state = StateIdle
	impl.stateMu.Unlock()

	// The coalesced change set survives the deferral and is retried once
	// the run releases.
	require.Eventually(t, func() bool {
		return idx.Graph().Class("Badge") != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx, err := New(root, config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	w, err := NewWatcher(idx, root, idx.Discovery(), 10*time.Millisecond)
	require.NoError(t, err)

	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
