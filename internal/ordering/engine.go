// Package ordering keeps playlist entry positions dense (1..N, no gaps, no
// duplicates) across inserts and removals.
package ordering

import (
	"context"
	"fmt"
	"time"

	"playdeck/shared/go/logging"
	"playdeck/shared/go/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Tx is the view of the playlist entries available inside an atomic unit.
// SelectEntries returns entries ordered by ascending position.
type Tx interface {
	LockPlaylist(ctx context.Context, ownerID, playlistID int64) (bool, error)
	SelectEntries(ctx context.Context, playlistID int64) ([]models.PlaylistEntry, error)
	InsertEntry(ctx context.Context, entry models.PlaylistEntry) (models.PlaylistEntry, error)
	DeleteEntry(ctx context.Context, playlistID, songID int64) (models.PlaylistEntry, error)
	// ShiftPositions adds delta to every entry at or after fromPosition.
	ShiftPositions(ctx context.Context, playlistID int64, fromPosition, delta int) error
}

// Store is the persistence collaborator. RunAtomic must isolate fn from
// every other RunAtomic touching the same playlist and discard all of fn's
// writes when it returns an error.
type Store interface {
	RunAtomic(ctx context.Context, fn func(Tx) error) error
	PlaylistOwned(ctx context.Context, ownerID, playlistID int64) (bool, error)
	ListEntries(ctx context.Context, playlistID int64, limit, offset int) ([]models.EntryDetail, error)
}

// Catalog resolves songs. GetSong returns an error matching ErrNotFound for
// unknown ids.
type Catalog interface {
	GetSong(ctx context.Context, id int64) (models.Song, error)
}

// Engine applies playlist membership edits.
type Engine struct {
	store   Store
	catalog Catalog
	now     func() time.Time
}

// New constructs an Engine.
func New(store Store, catalog Catalog) *Engine {
	return &Engine{store: store, catalog: catalog, now: time.Now}
}

// Insert adds songID to the playlist. With a nil desired position the song
// goes to the end; otherwise entries at or after *desired move down by one.
func (e *Engine) Insert(ctx context.Context, ownerID, playlistID, songID int64, desired *int) (models.EntryDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.EntryDetail{}, err
	}

	song, err := e.catalog.GetSong(ctx, songID)
	if err != nil {
		return models.EntryDetail{}, classify(err)
	}
	if !song.VisibleTo(ownerID) {
		return models.EntryDetail{}, fmt.Errorf("song %d: %w", songID, ErrNotFound)
	}

	var created models.PlaylistEntry
	err = e.store.RunAtomic(ctx, func(tx Tx) error {
		if err := lockOwned(ctx, tx, ownerID, playlistID); err != nil {
			return err
		}

		entries, err := tx.SelectEntries(ctx, playlistID)
		if err != nil {
			return classify(err)
		}
		for _, entry := range entries {
			if entry.SongID == songID {
				return fmt.Errorf("song %d in playlist %d: %w", songID, playlistID, ErrDuplicate)
			}
		}

		position := maxPosition(entries) + 1
		if desired != nil {
			if *desired < 1 || *desired > len(entries)+1 {
				return fmt.Errorf("position %d with %d entries: %w", *desired, len(entries), ErrInvalidPosition)
			}
			if *desired < position {
				if err := tx.ShiftPositions(ctx, playlistID, *desired, 1); err != nil {
					return classify(err)
				}
			}
			position = *desired
		}

		created, err = tx.InsertEntry(ctx, models.PlaylistEntry{
			PlaylistID: playlistID,
			SongID:     songID,
			Position:   position,
			AddedAt:    e.now().UTC(),
		})
		if err != nil {
			return classify(err)
		}

		return verifyDense(ctx, tx, playlistID)
	})
	if err != nil {
		return models.EntryDetail{}, classify(err)
	}

	return models.EntryDetail{
		ID:       created.ID,
		Position: created.Position,
		AddedAt:  created.AddedAt,
		Song:     song,
	}, nil
}

// Remove deletes songID from the playlist and closes the gap it leaves.
func (e *Engine) Remove(ctx context.Context, ownerID, playlistID, songID int64) (models.PlaylistEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.PlaylistEntry{}, err
	}

	var deleted models.PlaylistEntry
	err := e.store.RunAtomic(ctx, func(tx Tx) error {
		if err := lockOwned(ctx, tx, ownerID, playlistID); err != nil {
			return err
		}

		entries, err := tx.SelectEntries(ctx, playlistID)
		if err != nil {
			return classify(err)
		}
		found := false
		for _, entry := range entries {
			if entry.SongID == songID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("song %d in playlist %d: %w", songID, playlistID, ErrNotFound)
		}

		deleted, err = tx.DeleteEntry(ctx, playlistID, songID)
		if err != nil {
			return classify(err)
		}
		if err := tx.ShiftPositions(ctx, playlistID, deleted.Position+1, -1); err != nil {
			return classify(err)
		}

		return verifyDense(ctx, tx, playlistID)
	})
	if err != nil {
		return models.PlaylistEntry{}, classify(err)
	}
	return deleted, nil
}

// List returns a page of the playlist in position order.
func (e *Engine) List(ctx context.Context, ownerID, playlistID int64, limit, offset int) ([]models.EntryDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owned, err := e.store.PlaylistOwned(ctx, ownerID, playlistID)
	if err != nil {
		return nil, classify(err)
	}
	if !owned {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, ErrNotFound)
	}

	entries, err := e.store.ListEntries(ctx, playlistID, clampLimit(limit), max(offset, 0))
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

// Songs returns the whole playlist as a queue-ready song list.
func (e *Engine) Songs(ctx context.Context, ownerID, playlistID int64) ([]models.Song, error) {
	var songs []models.Song
	for offset := 0; ; offset += MaxListLimit {
		page, err := e.List(ctx, ownerID, playlistID, MaxListLimit, offset)
		if err != nil {
			return nil, err
		}
		for _, entry := range page {
			songs = append(songs, entry.Song)
		}
		if len(page) < MaxListLimit {
			return songs, nil
		}
	}
}

func lockOwned(ctx context.Context, tx Tx, ownerID, playlistID int64) error {
	owned, err := tx.LockPlaylist(ctx, ownerID, playlistID)
	if err != nil {
		return classify(err)
	}
	if !owned {
		return fmt.Errorf("playlist %d: %w", playlistID, ErrNotFound)
	}
	return nil
}

// verifyDense re-reads the playlist and fails the unit when positions are
// not exactly 1..N.
func verifyDense(ctx context.Context, tx Tx, playlistID int64) error {
	entries, err := tx.SelectEntries(ctx, playlistID)
	if err != nil {
		return classify(err)
	}
	for i, entry := range entries {
		if entry.Position != i+1 {
			logging.FromContext(ctx).Error().
				Int64("playlist_id", playlistID).
				Int("index", i).
				Int("position", entry.Position).
				Int("entries", len(entries)).
				Msg("playlist positions not dense after mutation")
			return fmt.Errorf("playlist %d at index %d has position %d: %w", playlistID, i, entry.Position, ErrInvariantViolation)
		}
	}
	return nil
}

func maxPosition(entries []models.PlaylistEntry) int {
	highest := 0
	for _, entry := range entries {
		if entry.Position > highest {
			highest = entry.Position
		}
	}
	return highest
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
