package ordering

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the playlist, song or entry does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means the song is already in the playlist.
	ErrDuplicate = errors.New("song already in playlist")
	// ErrInvalidPosition means the requested position is outside 1..N+1.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvariantViolation means positions were not dense after a mutation.
	ErrInvariantViolation = errors.New("playlist positions are not dense")
	// ErrStorageFailure wraps any failure of the persistence layer.
	ErrStorageFailure = errors.New("storage failure")
)

// Error kinds exposed to clients.
const (
	KindNotFound           = "NOT_FOUND"
	KindDuplicate          = "DUPLICATE"
	KindInvalidPosition    = "INVALID_POSITION"
	KindInvariantViolation = "INVARIANT_VIOLATION"
	KindStorageFailure     = "STORAGE_FAILURE"
)

// Kind returns the machine-readable kind of err, or "" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrInvalidPosition):
		return KindInvalidPosition
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	default:
		return KindStorageFailure
	}
}

// classify passes engine errors through and wraps everything else as a
// storage failure, keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrDuplicate, ErrInvalidPosition, ErrInvariantViolation, ErrStorageFailure} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
