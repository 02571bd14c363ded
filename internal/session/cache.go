package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/playit"
	"github.com/playit-manager/playit-manager/pkg/models"
)

// Fetcher downloads a fresh account snapshot.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Cache holds the last fetched snapshot and decides when a read has to go to
// the network. Reads are serialised, so at most one fetch is in flight.
type Cache struct {
	mu            sync.Mutex
	source        Fetcher
	snapshot      *models.Snapshot
	stale         bool
	authenticated bool
}

// NewCache creates a stale, empty cache reading from source. source may be
// nil until a client has been authenticated.
func NewCache(source Fetcher) *Cache {
	return &Cache{source: source, stale: true}
}

// Read returns the cached snapshot, fetching first when forceRefresh is set
// or the cache is stale. A failed fetch leaves the previous snapshot and the
// stale flag untouched.
func (c *Cache) Read(ctx context.Context, forceRefresh bool) (*models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && !c.stale {
		return c.snapshot, nil
	}
	if c.source == nil {
		return nil, playit.ErrNotAuthenticated
	}

	snap, err := c.source.FetchSnapshot(ctx)
	if err != nil {
		if errors.Is(err, playit.ErrNotAuthenticated) {
			c.authenticated = false
		}
		logging.Warn("cache", "snapshot fetch failed: %v", err)
		return nil, fmt.Errorf("failed to fetch account snapshot: %w", err)
	}

	c.snapshot = snap
	c.stale = false
	c.authenticated = true
	logging.Debug("cache", "snapshot refreshed with %d tunnels", len(snap.Tunnels))
	return snap, nil
}

// Invalidate marks the snapshot stale without touching the network.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Current returns the last known snapshot, or nil, without fetching.
func (c *Cache) Current() *models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Cache) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// Authenticated reports whether the last fetch succeeded with a valid session.
func (c *Cache) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// SetSource swaps the fetcher after a (re-)authentication and invalidates.
func (c *Cache) SetSource(source Fetcher) {
	c.mu.Lock()
	c.source = source
	c.stale = true
	c.authenticated = source != nil
	c.mu.Unlock()
}
