package storage

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedSource memoizes another source per path.
// Concurrent reads of the same path share one request. Failed reads are not cached.
type CachedSource struct {
	next Source

	mu    sync.RWMutex
	items map[string][]byte
	sf    singleflight.Group
}

// NewCachedSource wraps next with a per-path memo.
func NewCachedSource(next Source) *CachedSource {
	return &CachedSource{next: next, items: make(map[string][]byte)}
}

// ReadBytes returns the cached bytes for path, reading through on a miss.
func (c *CachedSource) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	// Fast path
	c.mu.RLock()
	data, ok := c.items[path]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	// The shared read outlives any single caller. Each caller still honours its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(path, func() (interface{}, error) {
		c.mu.RLock()
		data, ok := c.items[path]
		c.mu.RUnlock()
		if ok {
			return data, nil
		}

		data, err := c.next.ReadBytes(shared, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.items[path] = data
		c.mu.Unlock()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops the cached bytes for path.
func (c *CachedSource) Invalidate(path string) {
	c.mu.Lock()
	delete(c.items, path)
	c.mu.Unlock()
}
