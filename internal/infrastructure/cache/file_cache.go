// Package cache memoizes ExecutionResults for safe, read-only operations.
// Mutating operations are never cached.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// FileCache stores cache entries as JSON blobs addressed by hash key.
type FileCache struct {
	dir        string
	mu         sync.Mutex
	maxEntries int
	ttls       map[domain.IntentKind]time.Duration
	defaultTTL time.Duration
}

// NewFileCache returns a cache rooted at dir with per-operation-kind TTLs
// taken from config.
func NewFileCache(dir string, cfg domain.CacheSettings) *FileCache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = domain.DefaultMaxCacheEntries
	}
	defaultTTL := time.Duration(cfg.DefaultTTLSeconds) * time.Second
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	ttls := make(map[domain.IntentKind]time.Duration, len(cfg.TTLSeconds))
	for kind, secs := range cfg.TTLSeconds {
		ttls[domain.IntentKind(kind)] = time.Duration(secs) * time.Second
	}
	return &FileCache{
		dir:        dir,
		maxEntries: maxEntries,
		ttls:       ttls,
		defaultTTL: defaultTTL,
	}
}

// Key derives the cache key from the normalized query and intent kind.
func Key(normalized string, kind domain.IntentKind) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16]) + "-" + string(kind)
}

// Key implements ports.CacheRepository.
func (c *FileCache) Key(normalized string, kind domain.IntentKind) string {
	return Key(normalized, kind)
}

// Get implements ports.CacheRepository. Expired entries are dropped on read.
func (c *FileCache) Get(key string) (domain.CacheEntry, bool, error) {
	if key == "" {
		return domain.CacheEntry{}, false, nil
	}
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.CacheEntry{}, false, nil
		}
		return domain.CacheEntry{}, false, err
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.CacheEntry{}, false, err
	}
	if time.Since(entry.CreatedAt) > c.ttlFor(entry.Intent) {
		_ = os.Remove(path)
		return domain.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Set implements ports.CacheRepository. Only safe-operation results belong
// here; the pipeline enforces that before calling.
func (c *FileCache) Set(entry domain.CacheEntry) error {
	if entry.Key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.pathFor(entry.Key), data, 0o644); err != nil {
		return err
	}
	return c.evictIfNeeded()
}

// Entries lists cache entries (best-effort).
func (c *FileCache) Entries() ([]domain.CacheEntry, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.CacheEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Dir exposes the cache directory path.
func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) ttlFor(kind domain.IntentKind) time.Duration {
	if ttl, ok := c.ttls[kind]; ok && ttl > 0 {
		return ttl
	}
	return c.defaultTTL
}

func (c *FileCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) evictIfNeeded() error {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	if len(files) <= c.maxEntries {
		return nil
	}
	type aged struct {
		name string
		mod  time.Time
	}
	var all []aged
	for _, f := range files {
		info, err := f.Info()
		if err != nil {
			continue
		}
		all = append(all, aged{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].mod.Before(all[j].mod) })
	for _, f := range all[:len(all)-c.maxEntries] {
		_ = os.Remove(filepath.Join(c.dir, f.name))
	}
	return nil
}

var _ ports.CacheRepository = (*FileCache)(nil)
