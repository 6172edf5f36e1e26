package playlists

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tuist/podqueue/internal/db"
	"github.com/tuist/podqueue/internal/logger"
)

// PlaylistStore provides CRUD over playlist definitions (manual and smart).
//
// Reads degrade to empty results on storage errors (logged, never propagated)
// so listing paths cannot crash on a transient failure. Writes return errors.
type PlaylistStore struct {
	db *sql.DB
}

func NewPlaylistStore(database *sql.DB) *PlaylistStore {
	return &PlaylistStore{db: database}
}

// Count returns the number of playlist rows, excluding tombstones unless
// includeDeleted is set.
func (s *PlaylistStore) Count(includeDeleted bool) int {
	query := `SELECT COUNT(*) FROM playlists`
	if !includeDeleted {
		query += ` WHERE was_deleted = 0`
	}
	var count int
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		logger.L().Warn("playlist count failed", zap.Error(err))
		return 0
	}
	return count
}

// FindByUUID returns the playlist with the given uuid, or nil when no live or
// tombstoned row matches.
func (s *PlaylistStore) FindByUUID(uuid string) *Playlist {
	row := s.db.QueryRow(`SELECT `+playlistColumns+` FROM playlists WHERE uuid = ?`, uuid)
	p, err := scanPlaylist(row)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.L().Warn("playlist lookup failed", zap.String("uuid", uuid), zap.Error(err))
		}
		return nil
	}
	return p
}

// AllManual returns user-created manual playlists ordered by sort position.
// The reserved Up Next playlist is never listed.
func (s *PlaylistStore) AllManual(includeDeleted bool) []Playlist {
	return s.list(true, includeDeleted)
}

// AllSmart returns smart playlists ordered by sort position.
func (s *PlaylistStore) AllSmart(includeDeleted bool) []Playlist {
	return s.list(false, includeDeleted)
}

func (s *PlaylistStore) list(manual, includeDeleted bool) []Playlist {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE manual = ? AND uuid <> ?`
	if !includeDeleted {
		query += ` AND was_deleted = 0`
	}
	query += ` ORDER BY sort_position`

	rows, err := s.db.Query(query, boolToInt(manual), UpNextUUID)
	if err != nil {
		logger.L().Warn("playlist listing failed", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var result []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			logger.L().Warn("playlist scan failed", zap.Error(err))
			return nil
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		logger.L().Warn("playlist listing failed", zap.Error(err))
		return nil
	}
	return result
}

// Save inserts the playlist when ID is zero, updating p.ID from the allocated
// row id; otherwise it rewrites the full column set of the row matched by
// uuid.
func (s *PlaylistStore) Save(p *Playlist) error {
	args := playlistArgs(p)

	if p.ID == 0 {
		res, err := s.db.Exec(`
			INSERT INTO playlists (uuid, playlist_name, sort_position, manual, was_deleted, sync_status,
				audio_video, unplayed, partially_played, finished, downloaded, not_downloaded, starred,
				filter_hours, filter_duration, longer_than, shorter_than, all_podcasts, podcast_uuids)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return fmt.Errorf("insert playlist %s: %w", p.UUID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	}

	// Rebind: uuid moves from the column list to the WHERE clause.
	_, err := s.db.Exec(`
		UPDATE playlists SET playlist_name = ?, sort_position = ?, manual = ?, was_deleted = ?,
			sync_status = ?, audio_video = ?, unplayed = ?, partially_played = ?, finished = ?,
			downloaded = ?, not_downloaded = ?, starred = ?, filter_hours = ?, filter_duration = ?,
			longer_than = ?, shorter_than = ?, all_podcasts = ?, podcast_uuids = ?
		WHERE uuid = ?
	`, append(args[1:], p.UUID)...)
	if err != nil {
		return fmt.Errorf("update playlist %s: %w", p.UUID, err)
	}
	return nil
}

// Delete physically removes the playlist row and all of its entry rows in one
// transaction. Used by the purge pass after the sync collaborator has seen the
// tombstone.
func (s *PlaylistStore) Delete(p *Playlist) error {
	return db.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_episodes WHERE playlist_uuid = ?`, p.UUID); err != nil {
			return fmt.Errorf("delete entries of %s: %w", p.UUID, err)
		}
		if _, err := tx.Exec(`DELETE FROM playlists WHERE uuid = ?`, p.UUID); err != nil {
			return fmt.Errorf("delete playlist %s: %w", p.UUID, err)
		}
		return nil
	})
}

// UpdatePosition sets the display order of the playlist. Any locally visible
// ordering change is a sync-relevant mutation.
func (s *PlaylistStore) UpdatePosition(p *Playlist, newPosition int) error {
	_, err := s.db.Exec(`
		UPDATE playlists SET sort_position = ?, sync_status = ? WHERE uuid = ?
	`, newPosition, int(SyncStatusNotSynced), p.UUID)
	if err != nil {
		return fmt.Errorf("update position of %s: %w", p.UUID, err)
	}
	p.SortPosition = newPosition
	p.SyncStatus = SyncStatusNotSynced
	return nil
}

// MarkAllSynced flips every not-synced playlist to synced after a successful
// upload.
func (s *PlaylistStore) MarkAllSynced() error {
	_, err := s.db.Exec(`UPDATE playlists SET sync_status = ? WHERE sync_status = ?`,
		int(SyncStatusSynced), int(SyncStatusNotSynced))
	return err
}

// MarkAllUnsynced queues every playlist for re-upload.
func (s *PlaylistStore) MarkAllUnsynced() error {
	_, err := s.db.Exec(`UPDATE playlists SET sync_status = ?`, int(SyncStatusNotSynced))
	return err
}

// NextSortPosition returns 1 + MAX(sort_position) over all playlists, or 1
// when none exist. Used to append a new playlist at the end of the ordering.
func (s *PlaylistStore) NextSortPosition() int {
	var max sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(sort_position) FROM playlists`).Scan(&max); err != nil {
		logger.L().Warn("next sort position failed", zap.Error(err))
		return 1
	}
	return int(db.NullInt64Value(max)) + 1
}

// CountEpisodes evaluates a smart-playlist rule set against the episode
// corpus and returns the matching episode count.
func (s *PlaylistStore) CountEpisodes(rules FilterRules, forceInclude string) int {
	predicate, args := BuildPredicate(rules, forceInclude, time.Now())
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes WHERE `+predicate, args...).Scan(&count)
	if err != nil {
		logger.L().Warn("smart episode count failed", zap.Error(err))
		return 0
	}
	return count
}

// CountEpisodesLimited counts matches up to limit, for cheap previews.
func (s *PlaylistStore) CountEpisodesLimited(rules FilterRules, forceInclude string, limit int) int {
	predicate, args := BuildPredicate(rules, forceInclude, time.Now())
	args = append(args, limit)
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM (SELECT id FROM episodes WHERE `+predicate+` LIMIT ?)
	`, args...).Scan(&count)
	if err != nil {
		logger.L().Warn("limited episode count failed", zap.Error(err))
		return 0
	}
	return count
}

// PodcastHasMatch reports whether one podcast has any episode matching rules.
func (s *PlaylistStore) PodcastHasMatch(rules FilterRules, podcastUUID string) bool {
	predicate, args := BuildPredicate(rules, "", time.Now())
	args = append(args, podcastUUID)
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM episodes WHERE (`+predicate+`) AND podcast_uuid = ? LIMIT 1
	`, args...).Scan(&one)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.L().Warn("podcast match probe failed", zap.String("podcast", podcastUUID), zap.Error(err))
		}
		return false
	}
	return true
}
