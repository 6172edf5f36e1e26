package playlists

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tuist/podqueue/internal/db"
	"github.com/tuist/podqueue/internal/logger"
)

// EntryStore maintains one playlist's entries as a dense 0..N-1 position
// sequence. Every multi-statement mutation runs inside a single transaction
// so partial application is never observable, and every position-affecting
// mutation flips the owning playlist to not-synced in the same transaction.
type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(database *sql.DB) *EntryStore {
	return &EntryStore{db: database}
}

// EntriesFor returns the live entries of a playlist in position order.
// Storage errors degrade to an empty result.
func (s *EntryStore) EntriesFor(playlistUUID string) []Entry {
	rows, err := s.db.Query(`
		SELECT `+entryColumns+`
		FROM playlist_episodes
		WHERE playlist_uuid = ? AND was_deleted = 0
		ORDER BY episode_position
	`, playlistUUID)
	if err != nil {
		logger.L().Warn("entry listing failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return nil
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			logger.L().Warn("entry scan failed", zap.String("playlist", playlistUUID), zap.Error(err))
			return nil
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		logger.L().Warn("entry listing failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return nil
	}
	return entries
}

// CountFor returns the number of live entries of a playlist.
func (s *EntryStore) CountFor(playlistUUID string) int {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM playlist_episodes WHERE playlist_uuid = ? AND was_deleted = 0
	`, playlistUUID).Scan(&count)
	if err != nil {
		logger.L().Warn("entry count failed", zap.String("playlist", playlistUUID), zap.Error(err))
		return 0
	}
	return count
}

// InsertAtTop places the episodes at the head of the playlist, in the given
// order. Existing rows shift down by the batch size in one bulk update.
func (s *EntryStore) InsertAtTop(p *Playlist, refs []EpisodeRef) error {
	return s.insert(p, refs, true)
}

// InsertAtBottom appends the episodes after the current maximum position.
func (s *EntryStore) InsertAtBottom(p *Playlist, refs []EpisodeRef) error {
	return s.insert(p, refs, false)
}

func (s *EntryStore) insert(p *Playlist, refs []EpisodeRef, atTop bool) error {
	if len(refs) == 0 {
		return nil
	}

	exclude := make([]any, 0, len(refs))
	for _, r := range refs {
		exclude = append(exclude, r.EpisodeUUID)
	}
	excludePh := placeholders(len(exclude))

	return db.WithTx(s.db, func(tx *sql.Tx) error {
		pos := 0
		if !atTop {
			// Current max over live rows, ignoring any row of a re-saved
			// episode: it is about to move, so it must not count.
			var max sql.NullInt64
			args := append([]any{p.UUID}, exclude...)
			err := tx.QueryRow(`
				SELECT MAX(episode_position) FROM playlist_episodes
				WHERE playlist_uuid = ? AND was_deleted = 0 AND episode_uuid NOT IN (`+excludePh+`)
			`, args...).Scan(&max)
			if err != nil {
				return fmt.Errorf("max position of %s: %w", p.UUID, err)
			}
			pos = int(db.NullInt64Value(max))
			if max.Valid {
				pos++
			}
		}

		// Shift existing rows in one bulk update rather than a per-row
		// rewrite; the renumber below repairs any drift left by re-saved
		// rows vacating their old positions.
		shiftArgs := append([]any{len(refs), p.UUID, pos}, exclude...)
		_, err := tx.Exec(`
			UPDATE playlist_episodes SET episode_position = episode_position + ?
			WHERE playlist_uuid = ? AND was_deleted = 0 AND episode_position >= ?
				AND episode_uuid NOT IN (`+excludePh+`)
		`, shiftArgs...)
		if err != nil {
			return fmt.Errorf("shift entries of %s: %w", p.UUID, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO playlist_episodes (playlist_id, playlist_uuid, episode_uuid, podcast_uuid, title, episode_position)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(playlist_uuid, episode_uuid) DO UPDATE SET
				episode_position = excluded.episode_position,
				podcast_uuid = excluded.podcast_uuid,
				title = excluded.title,
				was_deleted = 0
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range refs {
			if _, err := stmt.Exec(p.ID, p.UUID, r.EpisodeUUID, r.PodcastUUID, r.Title, pos+i); err != nil {
				return fmt.Errorf("insert entry %s: %w", r.EpisodeUUID, err)
			}
		}

		if err := renumberTx(tx, p.UUID); err != nil {
			return err
		}
		return markNotSyncedTx(tx, p.UUID)
	})
}

// Move reorders the entry at index from to index to, then renumbers the whole
// sequence. from == -1 requests a renumber-only pass. A from index beyond the
// current count means the caller's snapshot is stale; the move is a no-op.
func (s *EntryStore) Move(playlistUUID string, from, to int) error {
	return db.WithTx(s.db, func(tx *sql.Tx) error {
		ids, err := liveEntryIDs(tx, playlistUUID)
		if err != nil {
			return err
		}
		if from >= len(ids) {
			return nil
		}

		if from >= 0 {
			id := ids[from]
			ids = append(ids[:from], ids[from+1:]...)
			if to < 0 {
				to = 0
			}
			if to > len(ids) {
				to = len(ids)
			}
			ids = append(ids[:to], append([]int64{id}, ids[to:]...)...)
		}

		// Full renumber: an arbitrary move changes the relative order of
		// every entry between source and destination.
		for i, id := range ids {
			if _, err := tx.Exec(`
				UPDATE playlist_episodes SET episode_position = ? WHERE id = ?
			`, i, id); err != nil {
				return fmt.Errorf("renumber entry %d: %w", id, err)
			}
		}

		if from >= 0 {
			return markNotSyncedTx(tx, playlistUUID)
		}
		return nil
	})
}

// Remove tombstones the given episodes and renumbers the remaining live rows
// so the dense-sequence invariant holds before the next read.
func (s *EntryStore) Remove(playlistUUID string, episodeUUIDs []string) error {
	if len(episodeUUIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(episodeUUIDs)+1)
	args = append(args, playlistUUID)
	for _, u := range episodeUUIDs {
		args = append(args, u)
	}
	where := `playlist_uuid = ? AND was_deleted = 0 AND episode_uuid IN (` + placeholders(len(episodeUUIDs)) + `)`
	return s.tombstone(playlistUUID, where, args)
}

// RemoveAllExcept tombstones every live entry whose episode is not in keep.
func (s *EntryStore) RemoveAllExcept(playlistUUID string, keep []string) error {
	args := make([]any, 0, len(keep)+1)
	args = append(args, playlistUUID)
	where := `playlist_uuid = ? AND was_deleted = 0`
	if len(keep) > 0 {
		for _, u := range keep {
			args = append(args, u)
		}
		where += ` AND episode_uuid NOT IN (` + placeholders(len(keep)) + `)`
	}
	return s.tombstone(playlistUUID, where, args)
}

// Clear tombstones every live entry of the playlist.
func (s *EntryStore) Clear(playlistUUID string) error {
	return s.tombstone(playlistUUID, `playlist_uuid = ? AND was_deleted = 0`, []any{playlistUUID})
}

func (s *EntryStore) tombstone(playlistUUID, where string, args []any) error {
	return db.WithTx(s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE playlist_episodes SET was_deleted = 1 WHERE `+where, args...)
		if err != nil {
			return fmt.Errorf("remove entries of %s: %w", playlistUUID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		if err := renumberTx(tx, playlistUUID); err != nil {
			return err
		}
		return markNotSyncedTx(tx, playlistUUID)
	})
}

// PurgeDeleted physically removes tombstoned entry rows across all playlists.
func (s *EntryStore) PurgeDeleted() error {
	_, err := s.db.Exec(`DELETE FROM playlist_episodes WHERE was_deleted = 1`)
	return err
}

func liveEntryIDs(tx *sql.Tx, playlistUUID string) ([]int64, error) {
	rows, err := tx.Query(`
		SELECT id FROM playlist_episodes
		WHERE playlist_uuid = ? AND was_deleted = 0
		ORDER BY episode_position
	`, playlistUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// renumberTx rewrites live positions densely from 0 in current order.
func renumberTx(tx *sql.Tx, playlistUUID string) error {
	ids, err := liveEntryIDs(tx, playlistUUID)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := tx.Exec(`
			UPDATE playlist_episodes SET episode_position = ? WHERE id = ?
		`, i, id); err != nil {
			return fmt.Errorf("renumber entry %d: %w", id, err)
		}
	}
	return nil
}

func markNotSyncedTx(tx *sql.Tx, playlistUUID string) error {
	_, err := tx.Exec(`UPDATE playlists SET sync_status = ? WHERE uuid = ?`,
		int(SyncStatusNotSynced), playlistUUID)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
