package episodes

import (
	"database/sql"
	"fmt"
	"time"
)

// PlayingStatus tracks how far a user got through an episode.
type PlayingStatus int

const (
	PlayingStatusNotPlayed  PlayingStatus = 0
	PlayingStatusInProgress PlayingStatus = 1
	PlayingStatusCompleted  PlayingStatus = 2
)

// DownloadStatus tracks local availability of the media file.
type DownloadStatus int

const (
	DownloadStatusNotDownloaded DownloadStatus = 0
	DownloadStatusDownloading   DownloadStatus = 1
	DownloadStatusDownloaded    DownloadStatus = 2
)

// Episode is one row of the episode corpus. The playlist engine only touches
// the fields smart filters and queue listings need.
type Episode struct {
	ID            int64
	UUID          string
	PodcastUUID   string
	Title         string
	Duration      int // seconds
	PublishedAt   time.Time
	FileType      string // mime type, e.g. "audio/mp3"
	PlayingStatus PlayingStatus
	PlayedUpTo    float64
	Status        DownloadStatus
	Starred       bool
	Archived      bool
}

// Store provides read access to the episode corpus, plus Add for seeding it.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const episodeColumns = `id, uuid, podcast_uuid, title, duration, published_at, file_type,
	playing_status, played_up_to, episode_status, starred, archived`

func scanEpisode(row interface{ Scan(...any) error }) (*Episode, error) {
	var e Episode
	var published int64
	var starred, archived int
	err := row.Scan(&e.ID, &e.UUID, &e.PodcastUUID, &e.Title, &e.Duration, &published,
		&e.FileType, &e.PlayingStatus, &e.PlayedUpTo, &e.Status, &starred, &archived)
	if err != nil {
		return nil, err
	}
	e.PublishedAt = time.Unix(published, 0).UTC()
	e.Starred = starred != 0
	e.Archived = archived != 0
	return &e, nil
}

// FindByUUID returns the episode with the given uuid, or nil when absent.
func (s *Store) FindByUUID(uuid string) (*Episode, error) {
	row := s.db.QueryRow(`
		SELECT `+episodeColumns+`
		FROM episodes
		WHERE uuid = ? AND was_deleted = 0
	`, uuid)

	e, err := scanEpisode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find episode %s: %w", uuid, err)
	}
	return e, nil
}

// AllForPodcast returns the live episodes of one podcast, newest first.
func (s *Store) AllForPodcast(podcastUUID string) ([]Episode, error) {
	rows, err := s.db.Query(`
		SELECT `+episodeColumns+`
		FROM episodes
		WHERE podcast_uuid = ? AND was_deleted = 0
		ORDER BY published_at DESC
	`, podcastUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// Add inserts an episode and returns its storage id.
func (s *Store) Add(e *Episode) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO episodes (uuid, podcast_uuid, title, duration, published_at, file_type,
			playing_status, played_up_to, episode_status, starred, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.UUID, e.PodcastUUID, e.Title, e.Duration, e.PublishedAt.Unix(), e.FileType,
		e.PlayingStatus, e.PlayedUpTo, e.Status, boolToInt(e.Starred), boolToInt(e.Archived))
	if err != nil {
		return 0, fmt.Errorf("add episode %s: %w", e.UUID, err)
	}
	return res.LastInsertId()
}

// Count returns the number of live episodes.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes WHERE was_deleted = 0`).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
