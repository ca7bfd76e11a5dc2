package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscope/railscope/internal/config"
	"github.com/railscope/railscope/internal/parser"
)

// Test Plan for the orchestrator:
// - Full workspace run builds the graph and parses schema and routes
// - Re-indexing unchanged content skips every file and grows nothing
// - Incremental runs pick up modified files and forget deleted ones
// - Mutual exclusion while a run is active
// - Cooperative cancellation and the wall-clock timeout
// - Snapshot restore across indexer instances; missing snapshot cold-starts

const userModel = `class User < ApplicationRecord
  has_many :posts
  MAX_LOGIN_ATTEMPTS = 3

  def full_name
    format_name(first_name)
  end

  private

  def format_name(name)
    name.strip
  end
end
`

const postModel = `class Post < ApplicationRecord
  belongs_to :user
end
`

const usersController = `class UsersController < ApplicationController
  def show
    @user = User.find(params[:id])
  end
end
`

const schemaSource = `ActiveRecord::Schema[7.1].define(version: 2026_01_15_000000) do
  create_table "users" do |t|
    t.string "email", null: false
    t.timestamps
  end
end
`

const routesSource = `Rails.application.routes.draw do
  resources :users
end
`

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "app/models/user.rb", userModel)
	writeFixture(t, root, "app/models/post.rb", postModel)
	writeFixture(t, root, "app/controllers/users_controller.rb", usersController)
	writeFixture(t, root, "db/schema.rb", schemaSource)
	writeFixture(t, root, "config/routes.rb", routesSource)
	// Ignored by default patterns.
	writeFixture(t, root, "vendor/gem/lib/thing.rb", "class Thing\nend\n")
	return root
}

func newTestIndexer(t *testing.T, root string) Indexer {
	t.Helper()
	idx, err := New(root, config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexWorkspace_BuildsGraph(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx := newTestIndexer(t, root)

	stats, err := idx.IndexWorkspace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesIndexed)
	assert.Zero(t, stats.FilesSkipped)
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, StateIdle, idx.State())

	g := idx.Graph()

	user := g.Class("User")
	require.NotNil(t, user)
	assert.True(t, user.IsModel)
	assert.Equal(t, "app/models/user.rb", user.File)
	assert.Contains(t, user.Constants, "MAX_LOGIN_ATTEMPTS")

	ctrl := g.Class("UsersController")
	require.NotNil(t, ctrl)
	assert.True(t, ctrl.IsController)

	assocs := g.Associations("User")
	require.Len(t, assocs, 1)
	assert.Equal(t, "Post", assocs[0].TargetModel)
	assert.Equal(t, parser.HasMany, assocs[0].Type)

	// Bare call inside full_name produced a same-class call edge.
	callee := g.Method("User#format_name")
	require.NotNil(t, callee)
	assert.Contains(t, callee.CalledBy, "User#full_name")

	// Class receiver in the controller recorded a User reference.
	assert.NotEmpty(t, g.References("User"))

	// Vendored files never enter the graph.
	assert.Nil(t, g.Class("Thing"))

	require.NotNil(t, idx.Schema())
	assert.NotNil(t, idx.Schema().Table("users"))
	require.NotNil(t, idx.Routes())
	assert.Equal(t, 7, idx.Routes().Len())
}

func TestIndexWorkspace_UnchangedHashSkipsWork(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx := newTestIndexer(t, root)

	first, err := idx.IndexWorkspace(context.Background())
	require.NoError(t, err)
	before := idx.Graph().Stats()

	second, err := idx.IndexWorkspace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.FilesDiscovered, second.FilesSkipped)
	assert.Zero(t, second.FilesIndexed)

	// Idempotence: no graph collection grew.
	assert.Equal(t, before, idx.Graph().Stats())
}

func TestIndexFiles_Incremental(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx := newTestIndexer(t, root)

	_, err := idx.IndexWorkspace(context.Background())
	require.NoError(t, err)

	writeFixture(t, root, "app/models/comment.rb", "class Comment < ApplicationRecord\nend\n")
	stats, err := idx.IndexFiles(context.Background(), []string{"app/models/comment.rb", "app/models/user.rb"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.NotNil(t, idx.Graph().Class("Comment"))

	// Deleting a file drops its hash so a recreation reindexes.
	require.NoError(t, os.Remove(filepath.Join(root, "app/models/comment.rb")))
	_, err = idx.IndexFiles(context.Background(), []string{"app/models/comment.rb"})
	require.NoError(t, err)

	writeFixture(t, root, "app/models/comment.rb", "class Comment < ApplicationRecord\nend\n")
	stats, err = idx.IndexFiles(context.Background(), []string{"app/models/comment.rb"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestIndexWorkspace_MutualExclusion(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx := newTestIndexer(t, root)

	impl := idx.(*indexer)
	impl.stateMu.Lock()
	impl.state = StateBatchIndexing
	impl.stateMu.Unlock()

	_, err := idx.IndexWorkspace(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	impl.stateMu.Lock()
	impl.state = StateIdle
	impl.stateMu.Unlock()
	_, err = idx.IndexWorkspace(context.Background())
	assert.NoError(t, err)
}

func TestIndexWorkspace_Cancellation(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	idx := newTestIndexer(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := idx.IndexWorkspace(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, stats)
	assert.Equal(t, StateCancelled, idx.State())

	// A cancelled run can be retried.
	_, err = idx.IndexWorkspace(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateIdle, idx.State())
}

func TestIndexWorkspace_Timeout(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)
	cfg := config.Default()
	cfg.Indexing.Timeout = time.Nanosecond
	idx, err := New(root, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	stats, err := idx.IndexWorkspace(context.Background())
	assert.ErrorIs(t, err, ErrTimedOut)
	require.NotNil(t, stats)
	assert.Equal(t, StateTimedOut, idx.State())
}

func TestRestore_SnapshotSurvivesRestart(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)

	first := newTestIndexer(t, root)
	_, err := first.IndexWorkspace(context.Background())
	require.NoError(t, err)
	want := first.Graph().Stats()
	first.Close()

	second := newTestIndexer(t, root)
	assert.Equal(t, want.Classes, second.Graph().Stats().Classes)
	assert.Equal(t, want.Methods, second.Graph().Stats().Methods)

	// All hashes are intact, so the next run skips everything.
	stats, err := second.IndexWorkspace(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.FilesIndexed)
	assert.Equal(t, stats.FilesDiscovered, stats.FilesSkipped)
}

func TestRestore_MissingSnapshotColdStarts(t *testing.T) {
	t.Parallel()

	root := fixtureWorkspace(t)

	first := newTestIndexer(t, root)
	_, err := first.IndexWorkspace(context.Background())
	require.NoError(t, err)
	first.Close()

	// Hash cache survives, snapshot does not.
	require.NoError(t, os.Remove(filepath.Join(root, ".railscope", "cache", "snapshot.db")))

	second := newTestIndexer(t, root)
	assert.Empty(t, second.Graph().Classes())

	stats, err := second.IndexWorkspace(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.FilesSkipped)
	assert.Equal(t, stats.FilesDiscovered, stats.FilesIndexed)
}
