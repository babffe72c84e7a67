package gallery

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

type cachedThumbnail struct {
	data              []byte
	expireAtTimestamp int64
}

// Cache keeps encoded thumbnails in memory so the gallery does not decode
// and rescale the same radiograph on every request.
type Cache struct {
	stop chan struct{}

	wg         sync.WaitGroup
	mu         sync.RWMutex
	thumbnails map[string]cachedThumbnail
	ttl        time.Duration
}

// NewCache Create a thumbnail cache. Entries live for ttl; an expiry sweep
// runs every cleanupInterval
func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	log.Info("Creating thumbnail cache with cleanup interval ", cleanupInterval)
	tc := &Cache{
		thumbnails: make(map[string]cachedThumbnail),
		stop:       make(chan struct{}),
		ttl:        ttl,
	}

	tc.wg.Add(1)
	go func(cleanupInterval time.Duration) {
		defer tc.wg.Done()
		tc.cleanupLoop(cleanupInterval)
	}(cleanupInterval)

	return tc
}

// cleanupLoop Drop expired thumbnails until the cache is stopped
func (tc *Cache) cleanupLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-tc.stop:
			return
		case <-t.C:
			tc.mu.Lock()
			for key, ct := range tc.thumbnails {
				if ct.expireAtTimestamp <= time.Now().Unix() {
					log.Debug("Thumbnail expired: ", key)
					delete(tc.thumbnails, key)
				}
			}
			tc.mu.Unlock()
		}
	}
}

// Stop End the cleanup loop
func (tc *Cache) Stop() {
	close(tc.stop)
	tc.wg.Wait()
}

var errThumbnailNotInCache = errors.New("the thumbnail isn't in cache")

// Key Cache key for a file at a given thumbnail size
func Key(file string, size int) string {
	return fmt.Sprintf("%s@%d", file, size)
}

// Update Put a thumbnail in the cache
func (tc *Cache) Update(key string, data []byte) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	log.Debug(fmt.Sprintf("Caching thumbnail %s (%d bytes)", key, len(data)))

	tc.thumbnails[key] = cachedThumbnail{
		data:              data,
		expireAtTimestamp: time.Now().Add(tc.ttl).Unix(),
	}
}

// Read Fetch a thumbnail from the cache
func (tc *Cache) Read(key string) ([]byte, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	ct, ok := tc.thumbnails[key]
	if !ok {
		return nil, errThumbnailNotInCache
	}
	return ct.data, nil
}

// Empty Remove all cached thumbnails
func (tc *Cache) Empty() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	log.Debug("Emptying thumbnail cache.")
	tc.thumbnails = make(map[string]cachedThumbnail)
}
