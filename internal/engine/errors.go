package engine

import "errors"

var (
	// ErrStorageUnavailable means the backing store could not be opened or
	// used at all; distinct from transient read failures, which degrade to
	// empty results.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPlaylistNotFound means the operation referenced a uuid with no
	// matching playlist row. Expected and recoverable: the playlist may have
	// been deleted by a concurrent sync.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrEpisodeNotFound means no referenced episode uuid resolved against
	// the episode corpus.
	ErrEpisodeNotFound = errors.New("episode not found")
)
