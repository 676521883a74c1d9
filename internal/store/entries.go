package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"playdeck/internal/ordering"
	"playdeck/shared/go/models"
)

var (
	_ ordering.Store   = (*Store)(nil)
	_ ordering.Catalog = (*Store)(nil)
)

// RunAtomic runs fn in one transaction and commits when fn returns nil.
func (s *Store) RunAtomic(ctx context.Context, fn func(ordering.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&entryTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// PlaylistOwned reports whether playlistID exists and belongs to ownerID.
func (s *Store) PlaylistOwned(ctx context.Context, ownerID, playlistID int64) (bool, error) {
	var owned bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1 AND user_id = $2)`,
		playlistID, ownerID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("check playlist owner: %w", err)
	}
	return owned, nil
}

// ListEntries returns a page of a playlist joined with song details.
func (s *Store) ListEntries(ctx context.Context, playlistID int64, limit, offset int) ([]models.EntryDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.position, e.added_at,
		       s.id, s.title, s.artist, s.duration, s.thumbnail, s.source_type, s.source_id,
		       COALESCE(s.file_url, ''), s.user_id, s.created_at, s.updated_at
		FROM playlist_entries e
		JOIN songs s ON s.id = e.song_id
		WHERE e.playlist_id = $1
		ORDER BY e.position ASC
		LIMIT $2 OFFSET $3`, playlistID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list playlist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.EntryDetail, 0)
	for rows.Next() {
		var (
			entry  models.EntryDetail
			userID sql.NullInt64
		)
		song := &entry.Song
		if err := rows.Scan(&entry.ID, &entry.Position, &entry.AddedAt,
			&song.ID, &song.Title, &song.Artist, &song.Duration, &song.Thumbnail, &song.SourceType,
			&song.SourceID, &song.FileURL, &userID, &song.CreatedAt, &song.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist entry: %w", err)
		}
		if userID.Valid {
			owner := userID.Int64
			song.UserID = &owner
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist entries: %w", err)
	}
	return entries, nil
}

// entryTx is the ordering.Tx view of a database transaction.
type entryTx struct {
	tx *sql.Tx
}

func (t *entryTx) LockPlaylist(ctx context.Context, ownerID, playlistID int64) (bool, error) {
	var userID int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM playlists
		WHERE id = $1
		FOR UPDATE`, playlistID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock playlist: %w", err)
	}
	return userID == ownerID, nil
}

func (t *entryTx) SelectEntries(ctx context.Context, playlistID int64) ([]models.PlaylistEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, playlist_id, song_id, position, added_at
		FROM playlist_entries
		WHERE playlist_id = $1
		ORDER BY position ASC, id ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("select playlist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.PlaylistEntry, 0)
	for rows.Next() {
		var entry models.PlaylistEntry
		if err := rows.Scan(&entry.ID, &entry.PlaylistID, &entry.SongID, &entry.Position, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("scan playlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist entries: %w", err)
	}
	return entries, nil
}

func (t *entryTx) InsertEntry(ctx context.Context, entry models.PlaylistEntry) (models.PlaylistEntry, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO playlist_entries (playlist_id, song_id, position, added_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		entry.PlaylistID, entry.SongID, entry.Position, entry.AddedAt,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.PlaylistEntry{}, fmt.Errorf("insert playlist entry: %w", ordering.ErrDuplicate)
		}
		return models.PlaylistEntry{}, fmt.Errorf("insert playlist entry: %w", err)
	}
	return entry, nil
}

func (t *entryTx) DeleteEntry(ctx context.Context, playlistID, songID int64) (models.PlaylistEntry, error) {
	entry := models.PlaylistEntry{PlaylistID: playlistID, SongID: songID}
	err := t.tx.QueryRowContext(ctx, `
		DELETE FROM playlist_entries
		WHERE playlist_id = $1 AND song_id = $2
		RETURNING id, position, added_at`, playlistID, songID,
	).Scan(&entry.ID, &entry.Position, &entry.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlaylistEntry{}, fmt.Errorf("song %d in playlist %d: %w", songID, playlistID, ordering.ErrNotFound)
	}
	if err != nil {
		return models.PlaylistEntry{}, fmt.Errorf("delete playlist entry: %w", err)
	}
	return entry, nil
}

func (t *entryTx) ShiftPositions(ctx context.Context, playlistID int64, fromPosition, delta int) error {
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE playlist_entries
		SET position = position + $1
		WHERE playlist_id = $2 AND position >= $3`, delta, playlistID, fromPosition); err != nil {
		return fmt.Errorf("shift playlist positions: %w", err)
	}
	return nil
}
