// Package engine exposes the playlist and Up Next queue operations used by
// the rest of the application.
package engine

import (
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuist/podqueue/internal/episodes"
	"github.com/tuist/podqueue/internal/logger"
	"github.com/tuist/podqueue/internal/playlists"
	"github.com/tuist/podqueue/internal/upnext"
)

// EpisodeSource resolves episode uuids against the episode corpus. The engine
// only reads; the corpus is maintained elsewhere.
type EpisodeSource interface {
	FindByUUID(uuid string) (*episodes.Episode, error)
	AllForPodcast(podcastUUID string) ([]episodes.Episode, error)
}

// Position selects where added episodes land in a playlist.
type Position int

const (
	PositionTop Position = iota
	PositionBottom
)

// Engine composes the playlist store, entry store and Up Next cache behind
// one serialized write path. It may be called from arbitrary goroutines;
// mutations are exclusive, cache reads stay concurrent. All operations are
// synchronous and may block on storage I/O.
type Engine struct {
	mu        sync.Mutex // serializes the exclusive-write path
	playlists *playlists.PlaylistStore
	entries   *playlists.EntryStore
	episodes  EpisodeSource
	upNext    *upnext.Cache
}

// New wires an engine over an open database and an episode source, and
// populates the Up Next cache.
func New(database *sql.DB, source EpisodeSource) (*Engine, error) {
	if database == nil {
		return nil, ErrStorageUnavailable
	}

	entryStore := playlists.NewEntryStore(database)
	e := &Engine{
		playlists: playlists.NewPlaylistStore(database),
		entries:   entryStore,
		episodes:  source,
		upNext: upnext.New(func() []playlists.Entry {
			return entryStore.EntriesFor(playlists.UpNextUUID)
		}),
	}
	e.upNext.Refresh()
	return e, nil
}

// CreateOrUpdatePlaylist persists the playlist, assigning a uuid and a sort
// position at the end of the user's ordering on first save. The row is left
// not-synced either way.
func (e *Engine) CreateOrUpdatePlaylist(p *playlists.Playlist) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if p.ID == 0 {
		if existing := e.playlists.FindByUUID(p.UUID); existing != nil {
			p.ID = existing.ID
		}
	}
	if p.ID == 0 && p.SortPosition == 0 {
		p.SortPosition = e.playlists.NextSortPosition()
	}
	p.SyncStatus = playlists.SyncStatusNotSynced

	if err := e.playlists.Save(p); err != nil {
		logger.L().Error("playlist save failed", zap.String("uuid", p.UUID), zap.Error(err))
		return err
	}
	return nil
}

// DeletePlaylist tombstones the playlist and its entries for later
// reconciliation by the sync collaborator; PurgeDeleted does the physical
// removal. The reserved Up Next playlist cannot be deleted.
func (e *Engine) DeletePlaylist(playlistUUID string) error {
	if playlistUUID == playlists.UpNextUUID {
		return ErrPlaylistNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.playlists.FindByUUID(playlistUUID)
	if p == nil {
		return ErrPlaylistNotFound
	}

	if err := e.entries.Clear(playlistUUID); err != nil {
		logger.L().Error("playlist entry clear failed", zap.String("uuid", playlistUUID), zap.Error(err))
		return err
	}

	p.WasDeleted = true
	p.SyncStatus = playlists.SyncStatusNotSynced
	if err := e.playlists.Save(p); err != nil {
		logger.L().Error("playlist delete failed", zap.String("uuid", playlistUUID), zap.Error(err))
		return err
	}
	return nil
}

// PurgeDeleted physically removes tombstoned playlists (with their entries)
// and tombstoned entry rows. Called after the sync collaborator has uploaded
// the deletions.
func (e *Engine) PurgeDeleted() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.allPlaylists(true) {
		if !p.WasDeleted {
			continue
		}
		pl := p
		if err := e.playlists.Delete(&pl); err != nil {
			logger.L().Error("playlist purge failed", zap.String("uuid", p.UUID), zap.Error(err))
			return err
		}
	}
	if err := e.entries.PurgeDeleted(); err != nil {
		logger.L().Error("entry purge failed", zap.Error(err))
		return err
	}
	e.upNext.Refresh()
	return nil
}

// Playlists returns all live user playlists, manual and smart, in display
// order.
func (e *Engine) Playlists() []playlists.Playlist {
	return e.allPlaylists(false)
}

func (e *Engine) allPlaylists(includeDeleted bool) []playlists.Playlist {
	all := e.playlists.AllManual(includeDeleted)
	all = append(all, e.playlists.AllSmart(includeDeleted)...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SortPosition < all[j].SortPosition
	})
	return all
}

// ReorderPlaylists moves the playlist to newIndex within the user's display
// ordering, clamping out-of-range targets, and renumbers sort positions.
func (e *Engine) ReorderPlaylists(playlistUUID string, newIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := e.allPlaylists(false)
	from := -1
	for i, p := range all {
		if p.UUID == playlistUUID {
			from = i
			break
		}
	}
	if from < 0 {
		return ErrPlaylistNotFound
	}

	moved := all[from]
	all = append(all[:from], all[from+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(all) {
		newIndex = len(all)
	}
	all = append(all[:newIndex], append([]playlists.Playlist{moved}, all[newIndex:]...)...)

	for i := range all {
		if all[i].SortPosition == i+1 {
			continue
		}
		if err := e.playlists.UpdatePosition(&all[i], i+1); err != nil {
			logger.L().Error("playlist reorder failed", zap.String("uuid", all[i].UUID), zap.Error(err))
			return err
		}
	}
	return nil
}

// AddEpisodesToPlaylist resolves the episode uuids and inserts them at the
// top or bottom of a manual playlist. Unknown episodes are skipped; if none
// resolve the operation reports ErrEpisodeNotFound.
func (e *Engine) AddEpisodesToPlaylist(episodeUUIDs []string, playlistUUID string, pos Position) error {
	if len(episodeUUIDs) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.playlists.FindByUUID(playlistUUID)
	if p == nil || p.WasDeleted {
		return ErrPlaylistNotFound
	}

	refs := make([]playlists.EpisodeRef, 0, len(episodeUUIDs))
	for _, u := range episodeUUIDs {
		ep, err := e.episodes.FindByUUID(u)
		if err != nil {
			logger.L().Warn("episode lookup failed", zap.String("uuid", u), zap.Error(err))
			continue
		}
		if ep == nil {
			logger.L().Warn("episode not in corpus, skipping", zap.String("uuid", u))
			continue
		}
		refs = append(refs, playlists.EpisodeRef{
			EpisodeUUID: ep.UUID,
			PodcastUUID: ep.PodcastUUID,
			Title:       ep.Title,
		})
	}
	if len(refs) == 0 {
		return ErrEpisodeNotFound
	}

	var err error
	if pos == PositionTop {
		err = e.entries.InsertAtTop(p, refs)
	} else {
		err = e.entries.InsertAtBottom(p, refs)
	}
	if err != nil {
		logger.L().Error("episode add failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return err
	}

	e.refreshIfUpNext(playlistUUID)
	return nil
}

// PlayNext puts the episode at the head of the Up Next queue.
func (e *Engine) PlayNext(episodeUUID string) error {
	return e.AddEpisodesToPlaylist([]string{episodeUUID}, playlists.UpNextUUID, PositionTop)
}

// PlayLast appends the episode to the Up Next queue.
func (e *Engine) PlayLast(episodeUUID string) error {
	return e.AddEpisodesToPlaylist([]string{episodeUUID}, playlists.UpNextUUID, PositionBottom)
}

// MoveEpisode moves the episode to index to within the playlist, clamping the
// target. An episode no longer present is a no-op, not an error: the caller's
// ordering snapshot was stale.
func (e *Engine) MoveEpisode(episodeUUID, playlistUUID string, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.playlists.FindByUUID(playlistUUID); p == nil || p.WasDeleted {
		return ErrPlaylistNotFound
	}

	from := -1
	for i, entry := range e.entries.EntriesFor(playlistUUID) {
		if entry.EpisodeUUID == episodeUUID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil
	}

	if err := e.entries.Move(playlistUUID, from, to); err != nil {
		logger.L().Error("episode move failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return err
	}

	e.refreshIfUpNext(playlistUUID)
	return nil
}

// RemoveEpisodes tombstones the episodes' entries in the playlist.
func (e *Engine) RemoveEpisodes(episodeUUIDs []string, playlistUUID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.playlists.FindByUUID(playlistUUID); p == nil || p.WasDeleted {
		return ErrPlaylistNotFound
	}

	if err := e.entries.Remove(playlistUUID, episodeUUIDs); err != nil {
		logger.L().Error("episode remove failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return err
	}

	e.refreshIfUpNext(playlistUUID)
	return nil
}

// ClearPlaylist empties a playlist.
func (e *Engine) ClearPlaylist(playlistUUID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.playlists.FindByUUID(playlistUUID); p == nil || p.WasDeleted {
		return ErrPlaylistNotFound
	}

	if err := e.entries.Clear(playlistUUID); err != nil {
		logger.L().Error("playlist clear failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return err
	}

	e.refreshIfUpNext(playlistUUID)
	return nil
}

// SmartPlaylistEpisodeCount evaluates the playlist's rules against the
// episode corpus. forceInclude, when non-empty, admits that episode
// regardless of its filter state.
func (e *Engine) SmartPlaylistEpisodeCount(playlistUUID, forceInclude string) (int, error) {
	p := e.playlists.FindByUUID(playlistUUID)
	if p == nil || p.WasDeleted {
		return 0, ErrPlaylistNotFound
	}
	return e.playlists.CountEpisodes(p.Rules, forceInclude), nil
}

// UpNext returns the queued entries in order, served from the cache.
func (e *Engine) UpNext() []playlists.Entry {
	return e.upNext.All()
}

// IsInUpNext reports whether the episode is queued, served from the cache.
func (e *Engine) IsInUpNext(episodeUUID string) bool {
	return e.upNext.Contains(episodeUUID)
}

// UpNextCount returns the queue length, served from the cache.
func (e *Engine) UpNextCount() int {
	return e.upNext.Count()
}

// MarkAllSynced records that the sync collaborator uploaded all pending
// changes.
func (e *Engine) MarkAllSynced() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playlists.MarkAllSynced()
}

// MarkAllUnsynced queues every playlist for re-upload after a failed sync.
func (e *Engine) MarkAllUnsynced() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playlists.MarkAllUnsynced()
}

// Store exposes the playlist store for read-only collaborators.
func (e *Engine) Store() *playlists.PlaylistStore {
	return e.playlists
}

func (e *Engine) refreshIfUpNext(playlistUUID string) {
	if playlistUUID == playlists.UpNextUUID {
		e.upNext.Refresh()
	}
}
