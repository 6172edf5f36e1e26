package playlists

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPredicate_DefaultRules(t *testing.T) {
	pred, args := BuildPredicate(DefaultRules(), "", time.Now())

	assert.Equal(t, "was_deleted = 0 AND archived = 0", pred)
	assert.Empty(t, args)
}

func TestBuildPredicate_Deterministic(t *testing.T) {
	rules := FilterRules{
		AudioVideo:           AudioVideoAudio,
		Unplayed:             true,
		Finished:             true,
		Downloaded:           true,
		Starred:              true,
		PublishedWithinHours: 24,
		FilterDuration:       true,
		LongerThan:           10,
		ShorterThan:          60,
		PodcastUUIDs:         []string{"p1", "p2"},
	}
	now := time.Unix(1_700_000_000, 0)

	pred1, args1 := BuildPredicate(rules, "force-uuid", now)
	pred2, args2 := BuildPredicate(rules, "force-uuid", now)

	assert.Equal(t, pred1, pred2)
	assert.Equal(t, args1, args2)
}

func TestBuildPredicate_ClauseAndArgOrder(t *testing.T) {
	rules := FilterRules{
		AudioVideo:           AudioVideoAudio,
		Unplayed:             true,
		Downloaded:           true,
		Starred:              true,
		PublishedWithinHours: 24,
		FilterDuration:       true,
		LongerThan:           10,
		ShorterThan:          60,
		PodcastUUIDs:         []string{"p1", "p2"},
	}
	now := time.Unix(1_700_000_000, 0)

	pred, args := BuildPredicate(rules, "", now)

	want := "was_deleted = 0 AND archived = 0" +
		" AND file_type LIKE ?" +
		" AND playing_status IN (0)" +
		" AND episode_status = 2" +
		" AND starred = 1" +
		" AND published_at >= ?" +
		" AND duration >= ? AND duration <= ?" +
		" AND podcast_uuid IN (?, ?)"
	assert.Equal(t, want, pred)

	require.Len(t, args, 6)
	assert.Equal(t, "audio/%", args[0])
	assert.Equal(t, now.Add(-24*time.Hour).Unix(), args[1])
	assert.Equal(t, 10*60, args[2])
	assert.Equal(t, 60*60, args[3])
	assert.Equal(t, "p1", args[4])
	assert.Equal(t, "p2", args[5])
}

func TestBuildPredicate_PlayingStatusToggles(t *testing.T) {
	// One or two toggles narrow; all three or none admit everything
	one := FilterRules{AllPodcasts: true, Finished: true}
	pred, _ := BuildPredicate(one, "", time.Now())
	assert.Contains(t, pred, "playing_status IN (2)")

	two := FilterRules{AllPodcasts: true, Unplayed: true, PartiallyPlayed: true}
	pred, _ = BuildPredicate(two, "", time.Now())
	assert.Contains(t, pred, "playing_status IN (0, 1)")

	all := FilterRules{AllPodcasts: true, Unplayed: true, PartiallyPlayed: true, Finished: true}
	pred, _ = BuildPredicate(all, "", time.Now())
	assert.NotContains(t, pred, "playing_status")
}

func TestBuildPredicate_DownloadToggles(t *testing.T) {
	downloaded := FilterRules{AllPodcasts: true, Downloaded: true}
	pred, _ := BuildPredicate(downloaded, "", time.Now())
	assert.Contains(t, pred, "episode_status = 2")

	notDownloaded := FilterRules{AllPodcasts: true, NotDownloaded: true}
	pred, _ = BuildPredicate(notDownloaded, "", time.Now())
	assert.Contains(t, pred, "episode_status IN (0, 1)")

	both := FilterRules{AllPodcasts: true, Downloaded: true, NotDownloaded: true}
	pred, _ = BuildPredicate(both, "", time.Now())
	assert.NotContains(t, pred, "episode_status")
}

func TestBuildPredicate_PodcastScope(t *testing.T) {
	// AllPodcasts overrides any listed uuids
	allRules := FilterRules{AllPodcasts: true, PodcastUUIDs: []string{"p1"}}
	pred, args := BuildPredicate(allRules, "", time.Now())
	assert.NotContains(t, pred, "podcast_uuid")
	assert.Empty(t, args)

	scoped := FilterRules{PodcastUUIDs: []string{"p1", "p2", "p3"}}
	pred, args = BuildPredicate(scoped, "", time.Now())
	assert.Contains(t, pred, "podcast_uuid IN (?, ?, ?)")
	assert.Equal(t, []any{"p1", "p2", "p3"}, args)

	// Explicit scope with no uuids matches every podcast, same as AllPodcasts
	emptyScope := FilterRules{}
	pred, args = BuildPredicate(emptyScope, "", time.Now())
	assert.Equal(t, "was_deleted = 0 AND archived = 0", pred)
	assert.Empty(t, args)
}

func TestBuildPredicate_ForceInclude(t *testing.T) {
	rules := FilterRules{AllPodcasts: true, Starred: true}

	pred, args := BuildPredicate(rules, "ep-42", time.Now())

	assert.Equal(t, "(was_deleted = 0 AND archived = 0 AND starred = 1) OR uuid = ?", pred)
	require.Len(t, args, 1)
	assert.Equal(t, "ep-42", args[len(args)-1])
}

func TestBuildPredicate_VideoOnly(t *testing.T) {
	rules := FilterRules{AllPodcasts: true, AudioVideo: AudioVideoVideo}

	pred, args := BuildPredicate(rules, "", time.Now())

	assert.Contains(t, pred, "file_type LIKE ?")
	assert.Equal(t, []any{"video/%"}, args)
}
