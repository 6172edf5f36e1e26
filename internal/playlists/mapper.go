package playlists

import (
	"strings"
)

// Column lists and scan/bind pairs for both tables. The column set is fixed
// and total so reads and writes stay symmetric and auditable.

const playlistColumns = `id, uuid, playlist_name, sort_position, manual, was_deleted, sync_status,
	audio_video, unplayed, partially_played, finished, downloaded, not_downloaded, starred,
	filter_hours, filter_duration, longer_than, shorter_than, all_podcasts, podcast_uuids`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*Playlist, error) {
	var p Playlist
	var manual, deleted, unplayed, partial, finished, downloaded, notDownloaded int
	var starred, filterDuration, allPodcasts int
	var podcastUUIDs string

	err := row.Scan(&p.ID, &p.UUID, &p.Name, &p.SortPosition, &manual, &deleted, &p.SyncStatus,
		&p.Rules.AudioVideo, &unplayed, &partial, &finished, &downloaded, &notDownloaded, &starred,
		&p.Rules.PublishedWithinHours, &filterDuration, &p.Rules.LongerThan, &p.Rules.ShorterThan,
		&allPodcasts, &podcastUUIDs)
	if err != nil {
		return nil, err
	}

	p.Manual = manual != 0
	p.WasDeleted = deleted != 0
	p.Rules.Unplayed = unplayed != 0
	p.Rules.PartiallyPlayed = partial != 0
	p.Rules.Finished = finished != 0
	p.Rules.Downloaded = downloaded != 0
	p.Rules.NotDownloaded = notDownloaded != 0
	p.Rules.Starred = starred != 0
	p.Rules.FilterDuration = filterDuration != 0
	p.Rules.AllPodcasts = allPodcasts != 0
	if podcastUUIDs != "" {
		p.Rules.PodcastUUIDs = strings.Split(podcastUUIDs, ",")
	}
	return &p, nil
}

// playlistArgs returns bind values in playlistColumns order, minus id.
func playlistArgs(p *Playlist) []any {
	return []any{
		p.UUID, p.Name, p.SortPosition, boolToInt(p.Manual), boolToInt(p.WasDeleted), int(p.SyncStatus),
		int(p.Rules.AudioVideo), boolToInt(p.Rules.Unplayed), boolToInt(p.Rules.PartiallyPlayed),
		boolToInt(p.Rules.Finished), boolToInt(p.Rules.Downloaded), boolToInt(p.Rules.NotDownloaded),
		boolToInt(p.Rules.Starred), p.Rules.PublishedWithinHours, boolToInt(p.Rules.FilterDuration),
		p.Rules.LongerThan, p.Rules.ShorterThan, boolToInt(p.Rules.AllPodcasts),
		strings.Join(p.Rules.PodcastUUIDs, ","),
	}
}

const entryColumns = `id, playlist_id, playlist_uuid, episode_uuid, podcast_uuid, title,
	episode_position, was_deleted`

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var deleted int
	err := row.Scan(&e.ID, &e.PlaylistID, &e.PlaylistUUID, &e.EpisodeUUID, &e.PodcastUUID,
		&e.Title, &e.Position, &deleted)
	if err != nil {
		return nil, err
	}
	e.WasDeleted = deleted != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
