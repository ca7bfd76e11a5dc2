package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ContentHash fingerprints file content. Hashes are compared for equality
// only, never stored durably beyond the cache file.
func ContentHash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// hashCacheFile is the on-disk JSON shape: hash entries as [uri, hash] pairs
// plus the save timestamp.
type hashCacheFile struct {
	FileHashes [][2]string `json:"fileHashes"`
	Timestamp  time.Time   `json:"timestamp"`
}

// HashCache maps file identifiers to content hashes. It decides whether a
// file's facts can be skipped during re-indexing.
type HashCache struct {
	mu     sync.RWMutex
	hashes map[string]string
}

// NewHashCache creates an empty hash cache.
func NewHashCache() *HashCache {
	return &HashCache{hashes: make(map[string]string)}
}

// Get returns the cached hash for a file identifier.
func (c *HashCache) Get(uri string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hashes[uri]
	return h, ok
}

// Set records the hash for a file identifier.
func (c *HashCache) Set(uri, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[uri] = hash
}

// Delete forgets a file identifier.
func (c *HashCache) Delete(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hashes, uri)
}

// Len returns the number of cached entries.
func (c *HashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hashes)
}

// Clear drops all entries. Used when the graph snapshot backing the skip
// optimization is missing (cold start).
func (c *HashCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes = make(map[string]string)
}

// Save serializes the cache to a JSON file, creating parent directories.
func (c *HashCache) Save(path string) error {
	c.mu.RLock()
	file := hashCacheFile{
		FileHashes: make([][2]string, 0, len(c.hashes)),
		Timestamp:  time.Now().UTC(),
	}
	for uri, hash := range c.hashes {
		file.FileHashes = append(file.FileHashes, [2]string{uri, hash})
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hash cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write hash cache: %w", err)
	}
	return nil
}

// Load reads a previously saved cache. A missing file is not an error: the
// cache simply starts empty. A corrupt file is discarded with an error so the
// caller can decide to cold-start.
func (c *HashCache) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read hash cache: %w", err)
	}

	var file hashCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode hash cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes = make(map[string]string, len(file.FileHashes))
	for _, pair := range file.FileHashes {
		c.hashes[pair[0]] = pair[1]
	}
	return nil
}
