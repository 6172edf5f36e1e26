package db

import (
	"database/sql"
)

const currentSchemaVersion = 3

// Reserved Up Next queue playlist. Seeded at schema init so it always exists.
const (
	UpNextID   = 1
	UpNextUUID = "up-next"
)

// InitSchema creates the podqueue tables when missing and applies idempotent
// migrations. Safe to call on every open.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			podcast_uuid TEXT NOT NULL,
			title TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			published_at INTEGER NOT NULL DEFAULT 0,
			file_type TEXT NOT NULL DEFAULT '',
			playing_status INTEGER NOT NULL DEFAULT 0,
			played_up_to REAL NOT NULL DEFAULT 0,
			episode_status INTEGER NOT NULL DEFAULT 0,
			starred INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0,
			was_deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_episodes_podcast ON episodes(podcast_uuid);
		CREATE INDEX IF NOT EXISTS idx_episodes_published ON episodes(published_at);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			playlist_name TEXT NOT NULL,
			sort_position INTEGER NOT NULL DEFAULT 0,
			manual INTEGER NOT NULL DEFAULT 0,
			was_deleted INTEGER NOT NULL DEFAULT 0,
			sync_status INTEGER NOT NULL DEFAULT 0,
			audio_video INTEGER NOT NULL DEFAULT 0,
			unplayed INTEGER NOT NULL DEFAULT 0,
			partially_played INTEGER NOT NULL DEFAULT 0,
			finished INTEGER NOT NULL DEFAULT 0,
			downloaded INTEGER NOT NULL DEFAULT 0,
			not_downloaded INTEGER NOT NULL DEFAULT 0,
			starred INTEGER NOT NULL DEFAULT 0,
			filter_hours INTEGER NOT NULL DEFAULT 0,
			filter_duration INTEGER NOT NULL DEFAULT 0,
			longer_than INTEGER NOT NULL DEFAULT 0,
			shorter_than INTEGER NOT NULL DEFAULT 0,
			all_podcasts INTEGER NOT NULL DEFAULT 1,
			podcast_uuids TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_playlists_sort ON playlists(sort_position);

		CREATE TABLE IF NOT EXISTS playlist_episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL DEFAULT 0,
			playlist_uuid TEXT NOT NULL,
			episode_uuid TEXT NOT NULL,
			podcast_uuid TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			episode_position INTEGER NOT NULL,
			was_deleted INTEGER NOT NULL DEFAULT 0,
			UNIQUE(playlist_uuid, episode_uuid)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_episodes_playlist
			ON playlist_episodes(playlist_uuid, episode_position);
		CREATE INDEX IF NOT EXISTS idx_playlist_episodes_episode
			ON playlist_episodes(episode_uuid);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Seed the reserved Up Next queue playlist
	_, err = db.Exec(`
		INSERT OR IGNORE INTO playlists (id, uuid, playlist_name, sort_position, manual, sync_status)
		VALUES (?, ?, 'Up Next', 0, 1, 1)
	`, UpNextID, UpNextUUID)
	if err != nil {
		return err
	}

	// Migration: add filter_duration toggle if missing
	_, _ = db.Exec(`ALTER TABLE playlists ADD COLUMN filter_duration INTEGER NOT NULL DEFAULT 0`)

	// Migration: add denormalized podcast_uuid/title columns if missing
	_, _ = db.Exec(`ALTER TABLE playlist_episodes ADD COLUMN podcast_uuid TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE playlist_episodes ADD COLUMN title TEXT NOT NULL DEFAULT ''`)

	return nil
}
