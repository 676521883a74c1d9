package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"playdeck/internal/ordering"
	"playdeck/shared/go/models"
)

var (
	// ErrSongNotFound matches ordering.ErrNotFound so the ordering engine can
	// classify catalog misses.
	ErrSongNotFound = fmt.Errorf("song %w", ordering.ErrNotFound)
	// ErrInvalidSong wraps song validation failures.
	ErrInvalidSong = errors.New("invalid song")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const songColumns = `id, title, artist, duration, thumbnail, source_type, source_id,
		       COALESCE(file_url, ''), user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (models.Song, error) {
	var (
		song   models.Song
		userID sql.NullInt64
	)
	if err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Duration, &song.Thumbnail,
		&song.SourceType, &song.SourceID, &song.FileURL, &userID, &song.CreatedAt, &song.UpdatedAt); err != nil {
		return models.Song{}, err
	}
	if userID.Valid {
		id := userID.Int64
		song.UserID = &id
	}
	return song, nil
}

// ValidateSong trims song in place and checks the required fields.
func ValidateSong(song *models.Song) error {
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	song.Duration = strings.TrimSpace(song.Duration)
	song.Thumbnail = strings.TrimSpace(song.Thumbnail)
	song.SourceID = strings.TrimSpace(song.SourceID)
	song.FileURL = strings.TrimSpace(song.FileURL)

	switch {
	case song.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidSong)
	case song.Artist == "":
		return fmt.Errorf("%w: artist is required", ErrInvalidSong)
	case song.Duration == "":
		return fmt.Errorf("%w: duration is required", ErrInvalidSong)
	case song.Thumbnail == "":
		return fmt.Errorf("%w: thumbnail is required", ErrInvalidSong)
	case song.SourceID == "":
		return fmt.Errorf("%w: sourceId is required", ErrInvalidSong)
	}

	sourceType, ok := models.ParseSourceType(string(song.SourceType))
	if !ok {
		return fmt.Errorf("%w: sourceType must be external or local", ErrInvalidSong)
	}
	song.SourceType = sourceType
	if sourceType == models.SourceLocal && song.FileURL == "" {
		return fmt.Errorf("%w: fileUrl is required for local songs", ErrInvalidSong)
	}
	return nil
}

// CreateSong inserts song. Local songs are owned by userID; external songs
// are shared by everyone.
func (s *Store) CreateSong(ctx context.Context, userID int64, song models.Song) (models.Song, error) {
	if err := ValidateSong(&song); err != nil {
		return models.Song{}, err
	}

	var owner any
	song.UserID = nil
	if song.SourceType == models.SourceLocal {
		owner = userID
		song.UserID = &userID
	}

	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (title, artist, duration, thumbnail, source_type, source_id, file_url, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, created_at, updated_at`,
		song.Title, song.Artist, song.Duration, song.Thumbnail, song.SourceType, song.SourceID,
		nullIfEmpty(song.FileURL), owner, now,
	).Scan(&song.ID, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// GetSong returns a song by id regardless of owner.
func (s *Store) GetSong(ctx context.Context, id int64) (models.Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ListSongs returns the songs visible to viewerID matching filter, newest
// first.
func (s *Store) ListSongs(ctx context.Context, viewerID int64, filter models.SongFilter) ([]models.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE (user_id IS NULL OR user_id = $1)`
	args := []any{viewerID}
	argIdx := 2

	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR artist ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize(filter.Limit), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// SongsByIDs returns the requested songs in the order of ids. Unknown ids
// are reported as ErrSongNotFound.
func (s *Store) SongsByIDs(ctx context.Context, ids []int64) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query songs by id: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]models.Song, len(ids))
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		byID[song.ID] = song
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	songs := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		song, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("song %d: %w", id, ErrSongNotFound)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// UpdateSong replaces the editable fields of a song visible to userID.
func (s *Store) UpdateSong(ctx context.Context, userID int64, song models.Song) (models.Song, error) {
	if err := ValidateSong(&song); err != nil {
		return models.Song{}, err
	}

	var owner any
	song.UserID = nil
	if song.SourceType == models.SourceLocal {
		owner = userID
		song.UserID = &userID
	}

	err := s.db.QueryRowContext(ctx, `
		UPDATE songs
		SET title = $1, artist = $2, duration = $3, thumbnail = $4, source_type = $5,
		    source_id = $6, file_url = $7, user_id = $8, updated_at = $9
		WHERE id = $10 AND (user_id IS NULL OR user_id = $11)
		RETURNING created_at, updated_at`,
		song.Title, song.Artist, song.Duration, song.Thumbnail, song.SourceType,
		song.SourceID, nullIfEmpty(song.FileURL), owner, time.Now().UTC(), song.ID, userID,
	).Scan(&song.CreatedAt, &song.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("update song: %w", err)
	}
	return song, nil
}

// DeleteSong removes a song visible to userID and closes the gaps it leaves
// in every playlist that contained it.
func (s *Store) DeleteSong(ctx context.Context, userID, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT p.id, e.position
		FROM playlists p
		JOIN playlist_entries e ON e.playlist_id = p.id
		WHERE e.song_id = $1
		ORDER BY p.id
		FOR UPDATE OF p`, id)
	if err != nil {
		return fmt.Errorf("lock playlists: %w", err)
	}
	type gap struct {
		playlistID int64
		position   int
	}
	var gaps []gap
	for rows.Next() {
		var g gap
		if err = rows.Scan(&g.playlistID, &g.position); err != nil {
			rows.Close()
			return fmt.Errorf("scan playlist entry: %w", err)
		}
		gaps = append(gaps, g)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate playlist entries: %w", err)
	}
	rows.Close()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM songs
		WHERE id = $1 AND (user_id IS NULL OR user_id = $2)`, id, userID)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}

	for _, g := range gaps {
		if _, err = tx.ExecContext(ctx, `
			UPDATE playlist_entries
			SET position = position - 1
			WHERE playlist_id = $1 AND position > $2`, g.playlistID, g.position); err != nil {
			return fmt.Errorf("compact playlist %d: %w", g.playlistID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit song delete: %w", err)
	}
	return nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
