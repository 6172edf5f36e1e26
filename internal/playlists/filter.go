package playlists

import (
	"strings"
	"time"
)

// AudioVideo restricts a smart playlist to one media kind.
type AudioVideo int

const (
	AudioVideoAll   AudioVideo = 0
	AudioVideoAudio AudioVideo = 1
	AudioVideoVideo AudioVideo = 2
)

// FilterRules is the declarative rule set of a smart playlist. The zero value
// plus AllPodcasts matches every live, non-archived episode.
type FilterRules struct {
	AudioVideo AudioVideo

	Unplayed        bool
	PartiallyPlayed bool
	Finished        bool

	Downloaded    bool
	NotDownloaded bool

	Starred bool

	// PublishedWithinHours keeps only episodes published in the last N hours.
	// Zero disables the window.
	PublishedWithinHours int

	// Duration bounds in minutes, applied only when FilterDuration is set.
	// Bounds are taken as given, not validated.
	FilterDuration bool
	LongerThan     int
	ShorterThan    int

	AllPodcasts  bool
	PodcastUUIDs []string
}

// DefaultRules returns the rule set of a freshly created smart playlist.
func DefaultRules() FilterRules {
	return FilterRules{AllPodcasts: true}
}

// BuildPredicate translates rules into a parameterized predicate over the
// episodes table, plus its bound arguments in placeholder order.
//
// Clause order is fixed: liveness, media type, playing status, download
// status, starred, publish window, duration bounds, podcast scope, and
// finally the force-include OR. The same rules always produce the same text
// and argument order, so compiled statements may be cached by rule shape.
//
// A podcast scope clause is emitted only when AllPodcasts is off and the uuid
// list is non-empty; an explicit scope with no uuids matches every podcast,
// the same as AllPodcasts.
//
// forceInclude, when non-empty, is OR-ed in by uuid so a just-added episode is
// visible in previews before its natural filter state would admit it.
func BuildPredicate(rules FilterRules, forceInclude string, now time.Time) (string, []any) {
	clauses := []string{"was_deleted = 0", "archived = 0"}
	var args []any

	switch rules.AudioVideo {
	case AudioVideoAudio:
		clauses = append(clauses, "file_type LIKE ?")
		args = append(args, "audio/%")
	case AudioVideoVideo:
		clauses = append(clauses, "file_type LIKE ?")
		args = append(args, "video/%")
	}

	// A playing-status clause only narrows when some but not all toggles are
	// set; all three (or none) admit every status.
	statuses := make([]string, 0, 3)
	if rules.Unplayed {
		statuses = append(statuses, "0")
	}
	if rules.PartiallyPlayed {
		statuses = append(statuses, "1")
	}
	if rules.Finished {
		statuses = append(statuses, "2")
	}
	if len(statuses) > 0 && len(statuses) < 3 {
		clauses = append(clauses, "playing_status IN ("+strings.Join(statuses, ", ")+")")
	}

	// Downloaded and not-downloaded together admit everything.
	if rules.Downloaded != rules.NotDownloaded {
		if rules.Downloaded {
			clauses = append(clauses, "episode_status = 2")
		} else {
			clauses = append(clauses, "episode_status IN (0, 1)")
		}
	}

	if rules.Starred {
		clauses = append(clauses, "starred = 1")
	}

	if rules.PublishedWithinHours > 0 {
		cutoff := now.Add(-time.Duration(rules.PublishedWithinHours) * time.Hour)
		clauses = append(clauses, "published_at >= ?")
		args = append(args, cutoff.Unix())
	}

	if rules.FilterDuration {
		clauses = append(clauses, "duration >= ?", "duration <= ?")
		args = append(args, rules.LongerThan*60, rules.ShorterThan*60)
	}

	if !rules.AllPodcasts && len(rules.PodcastUUIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(rules.PodcastUUIDs)), ", ")
		clauses = append(clauses, "podcast_uuid IN ("+placeholders+")")
		for _, u := range rules.PodcastUUIDs {
			args = append(args, u)
		}
	}

	predicate := strings.Join(clauses, " AND ")

	if forceInclude != "" {
		predicate = "(" + predicate + ") OR uuid = ?"
		args = append(args, forceInclude)
	}

	return predicate, args
}
