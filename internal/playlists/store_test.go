package playlists

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tuist/podqueue/internal/db"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
// Uses shared cache to ensure all connections see the same database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		t.Fatalf("failed to set pragma: %v", err)
	}

	if err := db.InitSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return conn
}

// newManualPlaylist saves a manual playlist and returns it with its id set.
func newManualPlaylist(t *testing.T, s *PlaylistStore, name string) *Playlist {
	t.Helper()
	p := &Playlist{
		UUID:         name + "-uuid",
		Name:         name,
		SortPosition: s.NextSortPosition(),
		Manual:       true,
		Rules:        DefaultRules(),
	}
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return p
}

// insertTestEpisodes seeds a small corpus spanning the filterable dimensions.
func insertTestEpisodes(t *testing.T, conn *sql.DB) {
	t.Helper()
	now := time.Now().Unix()

	episodes := []struct {
		uuid, podcast, fileType      string
		duration                     int
		published                    int64
		playingStatus, episodeStatus int
		starred, archived            int
	}{
		{"ep-1", "pod-a", "audio/mp3", 600, now, 0, 0, 0, 0},
		{"ep-2", "pod-a", "audio/mp3", 1800, now - 2*86400, 1, 2, 1, 0},
		{"ep-3", "pod-b", "video/mp4", 3600, now - 10*86400, 2, 2, 0, 0},
		{"ep-4", "pod-b", "audio/aac", 300, now - 40*86400, 0, 0, 0, 0},
		{"ep-5", "pod-c", "audio/mp3", 7200, now, 2, 0, 1, 1}, // archived
	}

	for _, e := range episodes {
		_, err := conn.Exec(`
			INSERT INTO episodes (uuid, podcast_uuid, title, duration, published_at, file_type,
				playing_status, episode_status, starred, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.uuid, e.podcast, "Episode "+e.uuid, e.duration, e.published, e.fileType,
			e.playingStatus, e.episodeStatus, e.starred, e.archived)
		if err != nil {
			t.Fatalf("failed to insert episode: %v", err)
		}
	}
}

func TestPlaylistStore_SaveAssignsID(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	p := newManualPlaylist(t, s, "News")
	if p.ID == 0 {
		t.Error("expected Save to assign a storage id")
	}
}

func TestPlaylistStore_ResaveUpdatesInPlace(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	p := newManualPlaylist(t, s, "News")
	p.Name = "Morning News"
	if err := s.Save(p); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	// Exactly one row: update, not duplicate insert
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM playlists WHERE uuid = ?`, p.UUID).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}

	got := s.FindByUUID(p.UUID)
	if got == nil {
		t.Fatal("FindByUUID returned nil")
	}
	if got.Name != "Morning News" {
		t.Errorf("Name = %q, want %q", got.Name, "Morning News")
	}
}

func TestPlaylistStore_FindByUUIDMissing(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	if got := s.FindByUUID("no-such-uuid"); got != nil {
		t.Errorf("expected nil for missing uuid, got %+v", got)
	}
}

func TestPlaylistStore_RulesRoundTrip(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	p := &Playlist{
		UUID:         "smart-uuid",
		Name:         "Long audio",
		SortPosition: 1,
		Rules: FilterRules{
			AudioVideo:           AudioVideoAudio,
			Unplayed:             true,
			Starred:              true,
			PublishedWithinHours: 336,
			FilterDuration:       true,
			LongerThan:           20,
			ShorterThan:          90,
			PodcastUUIDs:         []string{"pod-a", "pod-b"},
		},
	}
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := s.FindByUUID("smart-uuid")
	if got == nil {
		t.Fatal("FindByUUID returned nil")
	}
	if got.Rules.AudioVideo != AudioVideoAudio {
		t.Errorf("AudioVideo = %d, want audio", got.Rules.AudioVideo)
	}
	if !got.Rules.Unplayed || !got.Rules.Starred || !got.Rules.FilterDuration {
		t.Errorf("toggles lost in round trip: %+v", got.Rules)
	}
	if got.Rules.PublishedWithinHours != 336 {
		t.Errorf("PublishedWithinHours = %d, want 336", got.Rules.PublishedWithinHours)
	}
	if got.Rules.LongerThan != 20 || got.Rules.ShorterThan != 90 {
		t.Errorf("duration bounds = %d/%d, want 20/90", got.Rules.LongerThan, got.Rules.ShorterThan)
	}
	if len(got.Rules.PodcastUUIDs) != 2 || got.Rules.PodcastUUIDs[0] != "pod-a" {
		t.Errorf("PodcastUUIDs = %v, want [pod-a pod-b]", got.Rules.PodcastUUIDs)
	}
}

func TestPlaylistStore_ListingsOrderedAndScoped(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	b := newManualPlaylist(t, s, "B")
	a := newManualPlaylist(t, s, "A")
	smart := &Playlist{UUID: "s-uuid", Name: "S", SortPosition: s.NextSortPosition(), Rules: DefaultRules()}
	if err := s.Save(smart); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	manual := s.AllManual(false)
	if len(manual) != 2 {
		t.Fatalf("expected 2 manual playlists, got %d", len(manual))
	}
	// Ordered by sort position, not name, and the reserved queue is hidden
	if manual[0].UUID != b.UUID || manual[1].UUID != a.UUID {
		t.Errorf("manual order = [%s %s], want [%s %s]", manual[0].UUID, manual[1].UUID, b.UUID, a.UUID)
	}
	for _, p := range manual {
		if p.UUID == UpNextUUID {
			t.Error("AllManual must not list the Up Next playlist")
		}
	}

	smartList := s.AllSmart(false)
	if len(smartList) != 1 || smartList[0].UUID != "s-uuid" {
		t.Errorf("smart listing = %+v, want one entry s-uuid", smartList)
	}
}

func TestPlaylistStore_ListingsHonorTombstones(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	p := newManualPlaylist(t, s, "Doomed")
	p.WasDeleted = true
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got := s.AllManual(false); len(got) != 0 {
		t.Errorf("expected tombstoned playlist hidden, got %d rows", len(got))
	}
	if got := s.AllManual(true); len(got) != 1 {
		t.Errorf("expected tombstoned playlist with includeDeleted, got %d rows", len(got))
	}
	if got := s.Count(false); got != 1 { // Up Next only
		t.Errorf("Count(false) = %d, want 1", got)
	}
	if got := s.Count(true); got != 2 {
		t.Errorf("Count(true) = %d, want 2", got)
	}
}

func TestPlaylistStore_NextSortPosition(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	// Seeded Up Next sits at 0, so the first user playlist lands at 1
	if got := s.NextSortPosition(); got != 1 {
		t.Errorf("NextSortPosition = %d, want 1", got)
	}

	newManualPlaylist(t, s, "First")
	if got := s.NextSortPosition(); got != 2 {
		t.Errorf("NextSortPosition after insert = %d, want 2", got)
	}
}

func TestPlaylistStore_UpdatePositionMarksUnsynced(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	p := newManualPlaylist(t, s, "P")
	p.SyncStatus = SyncStatusSynced
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.UpdatePosition(p, 5); err != nil {
		t.Fatalf("UpdatePosition failed: %v", err)
	}

	got := s.FindByUUID(p.UUID)
	if got.SortPosition != 5 {
		t.Errorf("SortPosition = %d, want 5", got.SortPosition)
	}
	if got.SyncStatus != SyncStatusNotSynced {
		t.Error("position change must mark the playlist not synced")
	}
}

func TestPlaylistStore_MarkAllSynced(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)

	dirty := newManualPlaylist(t, s, "Dirty")
	clean := newManualPlaylist(t, s, "Clean")
	clean.SyncStatus = SyncStatusSynced
	if err := s.Save(clean); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.MarkAllSynced(); err != nil {
		t.Fatalf("MarkAllSynced failed: %v", err)
	}

	if got := s.FindByUUID(dirty.UUID); got.SyncStatus != SyncStatusSynced {
		t.Error("dirty playlist should be synced after MarkAllSynced")
	}
	if got := s.FindByUUID(clean.UUID); got.SyncStatus != SyncStatusSynced {
		t.Error("already-synced playlist should stay synced")
	}

	if err := s.MarkAllUnsynced(); err != nil {
		t.Fatalf("MarkAllUnsynced failed: %v", err)
	}
	if got := s.FindByUUID(clean.UUID); got.SyncStatus != SyncStatusNotSynced {
		t.Error("MarkAllUnsynced should queue every playlist for re-upload")
	}
}

func TestPlaylistStore_DeleteCascades(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)
	es := NewEntryStore(conn)

	p := newManualPlaylist(t, s, "Doomed")
	refs := []EpisodeRef{{EpisodeUUID: "e1"}, {EpisodeUUID: "e2"}}
	if err := es.InsertAtBottom(p, refs); err != nil {
		t.Fatalf("InsertAtBottom failed: %v", err)
	}

	if err := s.Delete(p); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := s.FindByUUID(p.UUID); got != nil {
		t.Error("playlist row should be gone")
	}
	var orphans int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM playlist_episodes WHERE playlist_uuid = ?`, p.UUID).Scan(&orphans); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("orphaned entry rows = %d, want 0", orphans)
	}
}

func TestPlaylistStore_CountEpisodes(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)
	insertTestEpisodes(t, conn)

	// Default rules match every live, non-archived episode
	if got := s.CountEpisodes(DefaultRules(), ""); got != 4 {
		t.Errorf("default rules count = %d, want 4", got)
	}

	// Same rules, same corpus: same count
	if again := s.CountEpisodes(DefaultRules(), ""); again != 4 {
		t.Errorf("repeat count = %d, want 4", again)
	}

	starred := DefaultRules()
	starred.Starred = true
	if got := s.CountEpisodes(starred, ""); got != 1 { // ep-2 (ep-5 is archived)
		t.Errorf("starred count = %d, want 1", got)
	}

	audio := DefaultRules()
	audio.AudioVideo = AudioVideoAudio
	if got := s.CountEpisodes(audio, ""); got != 3 {
		t.Errorf("audio count = %d, want 3", got)
	}

	scoped := DefaultRules()
	scoped.AllPodcasts = false
	scoped.PodcastUUIDs = []string{"pod-b"}
	if got := s.CountEpisodes(scoped, ""); got != 2 {
		t.Errorf("scoped count = %d, want 2", got)
	}

	recent := DefaultRules()
	recent.PublishedWithinHours = 72
	if got := s.CountEpisodes(recent, ""); got != 2 { // ep-1, ep-2
		t.Errorf("recent count = %d, want 2", got)
	}

	long := DefaultRules()
	long.FilterDuration = true
	long.LongerThan = 25
	long.ShorterThan = 120
	if got := s.CountEpisodes(long, ""); got != 2 { // ep-2 (30m), ep-3 (60m)
		t.Errorf("duration count = %d, want 2", got)
	}
}

func TestPlaylistStore_CountEpisodesForceInclude(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)
	insertTestEpisodes(t, conn)

	starred := DefaultRules()
	starred.Starred = true

	// ep-1 is not starred, but the force-include admits it for previews
	if got := s.CountEpisodes(starred, "ep-1"); got != 2 {
		t.Errorf("force-include count = %d, want 2", got)
	}
}

func TestPlaylistStore_CountEpisodesLimited(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)
	insertTestEpisodes(t, conn)

	if got := s.CountEpisodesLimited(DefaultRules(), "", 2); got != 2 {
		t.Errorf("limited count = %d, want 2", got)
	}
	if got := s.CountEpisodesLimited(DefaultRules(), "", 100); got != 4 {
		t.Errorf("limited count = %d, want 4", got)
	}
}

func TestPlaylistStore_PodcastHasMatch(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	s := NewPlaylistStore(conn)
	insertTestEpisodes(t, conn)

	video := DefaultRules()
	video.AudioVideo = AudioVideoVideo

	if !s.PodcastHasMatch(video, "pod-b") {
		t.Error("pod-b has a video episode")
	}
	if s.PodcastHasMatch(video, "pod-a") {
		t.Error("pod-a has no video episode")
	}
}
