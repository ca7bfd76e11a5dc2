package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
	"golang.org/x/sync/errgroup"

	"github.com/railscope/railscope/internal/config"
	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
	"github.com/railscope/railscope/internal/rails"
	"github.com/railscope/railscope/internal/schema"
	"github.com/railscope/railscope/internal/storage"
)

// Stats summarizes one index run.
type Stats struct {
	RunID             string        `json:"run_id"`
	FilesDiscovered   int           `json:"files_discovered"`
	FilesIndexed      int           `json:"files_indexed"`
	FilesSkipped      int           `json:"files_skipped"`
	FilesFailed       int           `json:"files_failed"`
	DiscoveryDuration time.Duration `json:"discovery_duration"`
	IndexingDuration  time.Duration `json:"indexing_duration"`
	Graph             graph.Stats   `json:"graph"`
}

// Indexer orchestrates discovery, change detection and batched indexing over
// one workspace.
type Indexer interface {
	// IndexWorkspace runs a full discovery and index pass. Rejected with
	// ErrAlreadyRunning while another run is active.
	IndexWorkspace(ctx context.Context) (*Stats, error)

	// IndexFiles indexes only the given root-relative paths. Paths outside
	// the configured source patterns are ignored; missing files are dropped
	// from the hash cache.
	IndexFiles(ctx context.Context, relPaths []string) (*Stats, error)

	// State returns the current run phase.
	State() State

	// Graph exposes the semantic graph for read-only consumers.
	Graph() *graph.Graph

	// Schema returns the parsed schema, or nil when none was found.
	Schema() *schema.Schema

	// Routes returns the parsed route table, or nil when none was found.
	Routes() *rails.RouteTable

	// Discovery exposes the compiled file discovery, for watcher wiring.
	Discovery() *FileDiscovery

	// Close releases the parse cache and the snapshot store.
	Close() error
}

type indexer struct {
	rootDir  string
	cfg      *config.Config
	progress ProgressReporter

	stateMu sync.Mutex
	state   State

	graph     *graph.Graph
	schema    *schema.Schema
	routes    *rails.RouteTable
	discovery *FileDiscovery
	scanner   *parser.Scanner
	hashes    *HashCache

	// Parse results keyed by content hash, so a watcher-triggered reindex of
	// a reverted file costs a cache hit instead of a rescan.
	parseCache otter.Cache[string, []parser.Node]

	store *storage.Store
}

// New creates an indexer rooted at rootDir. A previous graph snapshot is
// restored when one exists; a hash cache without a snapshot is discarded,
// since the skip optimization is only valid against a restored graph.
func New(rootDir string, cfg *config.Config, progress ProgressReporter) (Indexer, error) {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	discovery, err := NewFileDiscovery(rootDir, cfg.Paths.Source, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile discovery patterns: %w", err)
	}

	parseCache, err := otter.MustBuilder[string, []parser.Node](cfg.Indexing.ParseCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}

	idx := &indexer{
		rootDir:    rootDir,
		cfg:        cfg,
		progress:   progress,
		state:      StateIdle,
		graph:      graph.New(),
		discovery:  discovery,
		scanner:    parser.NewScanner(),
		hashes:     NewHashCache(),
		parseCache: parseCache,
	}

	if err := idx.restore(); err != nil {
		return nil, err
	}
	return idx, nil
}

// cacheDir resolves the configured cache directory.
func (i *indexer) cacheDir() string {
	if i.cfg.Storage.CacheDir != "" {
		return i.cfg.Storage.CacheDir
	}
	return filepath.Join(i.rootDir, ".railscope", "cache")
}

func (i *indexer) hashCachePath() string {
	return filepath.Join(i.cacheDir(), "hashes.json")
}

func (i *indexer) snapshotPath() string {
	return filepath.Join(i.cacheDir(), "snapshot.db")
}

// restore loads the hash cache and graph snapshot from a previous process.
// Any inconsistency degrades to a cold start rather than an error.
func (i *indexer) restore() error {
	if err := i.hashes.Load(i.hashCachePath()); err != nil {
		log.Printf("Warning: discarding hash cache: %v", err)
		i.hashes.Clear()
	}

	// A hash cache without its graph snapshot would skip files whose facts
	// exist only in a dead process's memory.
	if _, err := os.Stat(i.snapshotPath()); os.IsNotExist(err) {
		i.hashes.Clear()
	}

	store, err := storage.Open(i.snapshotPath())
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	i.store = store

	if i.hashes.Len() == 0 {
		return nil
	}
	g, err := store.Load()
	if err != nil {
		log.Printf("Warning: snapshot unreadable, cold start: %v", err)
		i.hashes.Clear()
		return nil
	}
	i.graph = g
	return nil
}

func (i *indexer) Close() error {
	i.parseCache.Close()
	if i.store != nil {
		return i.store.Close()
	}
	return nil
}

func (i *indexer) State() State {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	return i.state
}

func (i *indexer) Graph() *graph.Graph       { return i.graph }
func (i *indexer) Schema() *schema.Schema    { return i.schema }
func (i *indexer) Routes() *rails.RouteTable { return i.routes }
func (i *indexer) Discovery() *FileDiscovery { return i.discovery }

// setState transitions under the state mutex, logging illegal edges.
func (i *indexer) setState(next State) {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	if err := i.transition(next); err != nil {
		log.Printf("Warning: %v", err)
		i.state = next
	}
}

// begin claims the orchestrator for a new run.
func (i *indexer) begin() error {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	if !i.state.runnable() {
		return ErrAlreadyRunning
	}
	return i.transition(StateDiscovering)
}

func (i *indexer) IndexWorkspace(ctx context.Context) (*Stats, error) {
	if err := i.begin(); err != nil {
		return nil, err
	}

	stats := &Stats{RunID: uuid.NewString()}

	i.progress.OnDiscoveryStart()
	discoveryStart := time.Now()
	files, err := i.discovery.DiscoverFiles()
	if err != nil {
		i.setState(StateIdle)
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryDuration = time.Since(discoveryStart)
	i.progress.OnDiscoveryComplete(len(files))

	i.loadRailsArtifacts()

	return i.runBatches(ctx, files, stats, true)
}

func (i *indexer) IndexFiles(ctx context.Context, relPaths []string) (*Stats, error) {
	if err := i.begin(); err != nil {
		return nil, err
	}

	stats := &Stats{RunID: uuid.NewString()}

	var files []string
	for _, rel := range relPaths {
		rel = filepath.ToSlash(rel)
		if !i.discovery.Matches(rel) {
			continue
		}
		if _, err := os.Stat(filepath.Join(i.rootDir, rel)); os.IsNotExist(err) {
			// Deleted file: forget the hash so a recreation reindexes. Graph
			// facts are additive and stay until the next full rebuild.
			i.hashes.Delete(rel)
			continue
		}
		files = append(files, rel)
	}
	stats.FilesDiscovered = len(files)

	i.loadRailsArtifacts()

	return i.runBatches(ctx, files, stats, false)
}

// loadRailsArtifacts parses the schema and routes files. Absence is silent:
// not every indexed tree is a full Rails app.
func (i *indexer) loadRailsArtifacts() {
	if data, err := os.ReadFile(filepath.Join(i.rootDir, i.cfg.Rails.SchemaPath)); err == nil {
		i.schema = schema.Parse(string(data))
	}
	if data, err := os.ReadFile(filepath.Join(i.rootDir, i.cfg.Rails.RoutesPath)); err == nil {
		i.routes = rails.ParseRoutes(string(data))
	}
}

// runBatches processes files in fixed-size batches, racing the configured
// wall-clock timeout, then saves caches on success.
func (i *indexer) runBatches(ctx context.Context, files []string, stats *Stats, fullRun bool) (*Stats, error) {
	i.setState(StateBatchIndexing)
	i.progress.OnIndexingStart(len(files))
	indexingStart := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, i.cfg.Indexing.Timeout)
	defer cancel()

	var indexed, skipped, failed atomic.Int64

	batchSize := i.cfg.Indexing.BatchSize
	for start := 0; start < len(files); start += batchSize {
		// Cooperative cancellation, checked once per batch.
		if err := runCtx.Err(); err != nil {
			return i.abandon(ctx, stats, &indexed, &skipped, &failed, indexingStart)
		}

		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		eg, egCtx := errgroup.WithContext(runCtx)
		for _, rel := range files[start:end] {
			rel := rel
			eg.Go(func() error {
				// Checked again before each file's work starts.
				if err := egCtx.Err(); err != nil {
					return err
				}
				switch i.indexFile(rel) {
				case fileIndexed:
					indexed.Add(1)
				case fileSkipped:
					skipped.Add(1)
				case fileFailed:
					failed.Add(1)
				}
				i.progress.OnFileIndexed(rel)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return i.abandon(ctx, stats, &indexed, &skipped, &failed, indexingStart)
		}
	}

	if err := runCtx.Err(); err != nil {
		return i.abandon(ctx, stats, &indexed, &skipped, &failed, indexingStart)
	}

	// Second pass: cross-file subclass links recorded before their target.
	i.graph.ResolvePending()

	i.setState(StateSaving)
	if err := i.hashes.Save(i.hashCachePath()); err != nil {
		log.Printf("Warning: failed to save hash cache: %v", err)
	}
	if err := i.store.Save(i.graph); err != nil {
		log.Printf("Warning: failed to save graph snapshot: %v", err)
	}
	i.setState(StateIdle)

	stats.FilesIndexed = int(indexed.Load())
	stats.FilesSkipped = int(skipped.Load())
	stats.FilesFailed = int(failed.Load())
	stats.IndexingDuration = time.Since(indexingStart)
	stats.Graph = i.graph.Stats()

	i.progress.OnComplete(stats)
	log.Printf("Index run %s: %d indexed, %d skipped, %d failed in %v",
		stats.RunID, stats.FilesIndexed, stats.FilesSkipped, stats.FilesFailed, stats.IndexingDuration)
	if fullRun {
		log.Printf("Graph: %d classes, %d methods, %d call edges",
			stats.Graph.Classes, stats.Graph.Methods, stats.Graph.CallEdges)
	}
	return stats, nil
}

// abandon ends a run in Cancelled or TimedOut. The graph keeps every fact
// ingested so far: partial but consistent.
func (i *indexer) abandon(ctx context.Context, stats *Stats, indexed, skipped, failed *atomic.Int64, indexingStart time.Time) (*Stats, error) {
	stats.FilesIndexed = int(indexed.Load())
	stats.FilesSkipped = int(skipped.Load())
	stats.FilesFailed = int(failed.Load())
	stats.IndexingDuration = time.Since(indexingStart)
	i.graph.ResolvePending()
	stats.Graph = i.graph.Stats()

	if ctx.Err() != nil {
		i.setState(StateCancelled)
		return stats, ErrCancelled
	}
	i.setState(StateTimedOut)
	return stats, ErrTimedOut
}

type fileResult int

const (
	fileIndexed fileResult = iota
	fileSkipped
	fileFailed
)

// indexFile hashes, parses and ingests one file. An unchanged hash skips all
// work; a cached parse result skips the scan.
func (i *indexer) indexFile(rel string) fileResult {
	data, err := os.ReadFile(filepath.Join(i.rootDir, rel))
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", rel, err)
		return fileFailed
	}

	hash := ContentHash(data)
	if cached, ok := i.hashes.Get(rel); ok && cached == hash {
		return fileSkipped
	}

	nodes, ok := i.parseCache.Get(hash)
	if !ok {
		nodes = i.scanner.Scan(string(data))
		i.parseCache.Set(hash, nodes)
	}

	ingestNodes(i.graph, rel, nodes)
	i.hashes.Set(rel, hash)
	return fileIndexed
}
