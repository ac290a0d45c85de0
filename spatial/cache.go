package spatial

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/patrickmn/go-cache"
)

// decodedSample is a fully decoded sound kept in memory
type decodedSample struct {
	buffer *beep.Buffer
	format beep.Format
}

// sampleCache stores decoded samples keyed by absolute path and modification time
// An edited file gets a new key, stale entries expire through the TTL
type sampleCache struct {
	store *cache.Cache
}

func newSampleCache(ttl time.Duration) *sampleCache {
	return &sampleCache{store: cache.New(ttl, 2*ttl)}
}

// load returns a cached sample or decodes and caches it
func (c *sampleCache) load(path string) (*decodedSample, error) {
	key, err := sampleKey(path)
	if err != nil {
		return nil, err
	}

	if v, ok := c.store.Get(key); ok {
		// Touch to extend the TTL for frequently reloaded sounds
		c.store.Set(key, v, cache.DefaultExpiration)
		return v.(*decodedSample), nil
	}

	sample, err := decodeSample(path)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, sample, cache.DefaultExpiration)
	return sample, nil
}

// len returns the number of cached samples
func (c *sampleCache) len() int {
	return c.store.ItemCount()
}

func (c *sampleCache) flush() {
	c.store.Flush()
}

func sampleKey(path string) (string, error) {
	if _, err := formatOf(path); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s@%d", abs, info.ModTime().UnixNano()), nil
}
