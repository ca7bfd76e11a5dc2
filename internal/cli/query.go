package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/railscope/railscope/internal/config"
	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/rails"
	"github.com/railscope/railscope/internal/schema"
	"github.com/railscope/railscope/internal/storage"
)

// workspace bundles everything a query command needs: the restored graph
// plus the Rails artifacts parsed fresh from disk.
type workspace struct {
	Root   string
	Config *config.Config
	Graph  *graph.Graph
	Schema *schema.Schema    // nil when no schema file exists
	Routes *rails.RouteTable // nil when no routes file exists
}

// openWorkspace restores the persisted graph snapshot for query commands.
// Queries never reindex; a missing snapshot is an instruction to the user,
// not a trigger for implicit work.
func openWorkspace() (*workspace, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cacheDir := cfg.Storage.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(root, ".railscope", "cache")
	}
	snapshotPath := filepath.Join(cacheDir, "snapshot.db")
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no index found at %s, run 'railscope index' first", snapshotPath)
	}

	store, err := storage.Open(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer store.Close()

	g, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	ws := &workspace{Root: root, Config: cfg, Graph: g}
	if data, err := os.ReadFile(filepath.Join(root, cfg.Rails.SchemaPath)); err == nil {
		ws.Schema = schema.Parse(string(data))
	}
	if data, err := os.ReadFile(filepath.Join(root, cfg.Rails.RoutesPath)); err == nil {
		ws.Routes = rails.ParseRoutes(string(data))
	}
	return ws, nil
}
