// Package upnext holds the in-memory ordered mirror of the Up Next queue.
package upnext

import (
	"sync"

	"github.com/tuist/podqueue/internal/playlists"
)

// Loader reloads the queue entries from storage in position order.
type Loader func() []playlists.Entry

// Cache mirrors the live entries of the Up Next playlist for the hot player
// and UI read paths. It is a derived, disposable projection: Refresh replaces
// the whole snapshot atomically, never updating it in place, so readers may
// see a one-refresh-behind view but never a torn one.
//
// The cache is owned by the engine; it has no ambient global state.
type Cache struct {
	mu      sync.RWMutex
	load    Loader
	entries []playlists.Entry
	members map[string]struct{}
}

func New(load Loader) *Cache {
	return &Cache{
		load:    load,
		members: make(map[string]struct{}),
	}
}

// Refresh discards the cache and reloads it in full from storage.
func (c *Cache) Refresh() {
	entries := c.load()
	members := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		members[e.EpisodeUUID] = struct{}{}
	}

	c.mu.Lock()
	c.entries = entries
	c.members = members
	c.mu.Unlock()
}

// All returns a snapshot copy of the queue in order. Callers never observe
// the cache mutate mid-iteration.
func (c *Cache) All() []playlists.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]playlists.Entry, len(c.entries))
	copy(snapshot, c.entries)
	return snapshot
}

// Find returns the queue entry for an episode, or nil.
func (c *Cache) Find(episodeUUID string) *playlists.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.EpisodeUUID == episodeUUID {
			entry := e
			return &entry
		}
	}
	return nil
}

// At returns the entry at index, or nil when out of range.
func (c *Cache) At(index int) *playlists.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.entries) {
		return nil
	}
	entry := c.entries[index]
	return &entry
}

// Contains reports whether the episode is queued.
func (c *Cache) Contains(episodeUUID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[episodeUUID]
	return ok
}

// Count returns the number of queued entries.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// NextPosition returns the position a new entry would take: 0 for the top of
// the queue, the current count for the bottom.
func (c *Cache) NextPosition(atBottom bool) int {
	if !atBottom {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
