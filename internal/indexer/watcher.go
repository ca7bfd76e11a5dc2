package indexer

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the workspace for file changes and triggers incremental
// reindexing after a debounce window.
type Watcher struct {
	indexer      Indexer
	discovery    *FileDiscovery
	rootDir      string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a file watcher bound to an indexer.
func NewWatcher(idx Indexer, rootDir string, discovery *FileDiscovery, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		indexer:      idx,
		discovery:    discovery,
		rootDir:      rootDir,
		watcher:      fsw,
		debounceTime: debounce,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the file watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	reindexCh := make(chan struct{}, 1)
	changedFiles := make(map[string]bool)

	// Reset debounce timer - properly stop and drain
	arm := func() {
		if debounceTimer != nil {
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
		}
		debounceTimer = time.AfterFunc(w.debounceTime, func() {
			select {
			case reindexCh <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			relPath, err := filepath.Rel(w.rootDir, event.Name)
			if err != nil {
				continue
			}
			changedFiles[filepath.ToSlash(relPath)] = true

			// New directories join the watch set immediately.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			arm()

		case <-reindexCh:
			if w.triggerReindex(ctx, changedFiles) {
				changedFiles = make(map[string]bool)
			} else {
				// Deferred: keep the coalesced set and retry after another
				// debounce window.
				arm()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// triggerReindex executes an incremental reindex over the coalesced set.
// Returns false when the run was rejected because another run is active, so
// the caller keeps the change set for a later retry.
func (w *Watcher) triggerReindex(ctx context.Context, changedFiles map[string]bool) bool {
	if len(changedFiles) == 0 {
		return true
	}

	fileList := make([]string, 0, len(changedFiles))
	for file := range changedFiles {
		fileList = append(fileList, file)
	}

	log.Printf("Reindexing due to changes in %d file(s)...", len(fileList))
	start := time.Now()

	stats, err := w.indexer.IndexFiles(ctx, fileList)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			// A full run owns the graph; retry once it releases.
			log.Printf("Reindex deferred: %v", err)
			return false
		}
		log.Printf("Error during incremental reindex: %v", err)
		return true
	}

	log.Printf("Reindex complete in %v (%d indexed, %d skipped)",
		time.Since(start), stats.FilesIndexed, stats.FilesSkipped)
	return true
}

// shouldProcessEvent checks if an event should trigger reindexing.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	// Directory creations pass through so the watch set grows; everything
	// else must be an indexable source file.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return !w.discovery.shouldIgnore(relPath)
	}
	return w.discovery.Matches(relPath)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Log but continue - don't fail the entire watch for one directory
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(w.rootDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath != "." && w.discovery.shouldIgnore(relPath) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil
		}
		return nil
	})
}
