package playlists

import (
	"github.com/tuist/podqueue/internal/db"
)

// Reserved Up Next queue playlist identifiers.
const (
	UpNextID   = db.UpNextID
	UpNextUUID = db.UpNextUUID
)

// SyncStatus is the local dirty flag consumed by the sync collaborator.
type SyncStatus int

const (
	SyncStatusNotSynced SyncStatus = 0
	SyncStatusSynced    SyncStatus = 1
)

// Playlist is a named ordered collection of episodes, either manual (explicit
// entry rows) or smart (membership computed from Rules on demand).
//
// UUID is the only identifier stable across devices; ID is storage-local and
// must not be used for cross-device correlation.
type Playlist struct {
	ID           int64
	UUID         string
	Name         string
	SortPosition int
	Manual       bool
	WasDeleted   bool
	SyncStatus   SyncStatus
	Rules        FilterRules
}

// Entry associates one episode to one playlist at one ordered position.
// PlaylistUUID is the canonical reference; PlaylistID is a legacy column kept
// for backward-compatible queries.
type Entry struct {
	ID           int64
	PlaylistID   int64
	PlaylistUUID string
	EpisodeUUID  string
	PodcastUUID  string
	Title        string
	Position     int
	WasDeleted   bool
}

// EpisodeRef carries the denormalized episode fields an entry row stores.
type EpisodeRef struct {
	EpisodeUUID string
	PodcastUUID string
	Title       string
}
