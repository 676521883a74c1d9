package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"playdeck/internal/ordering"
	"playdeck/shared/go/models"
)

var (
	// ErrPlaylistNotFound matches ordering.ErrNotFound.
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ordering.ErrNotFound)
	// ErrInvalidPlaylist wraps playlist validation failures.
	ErrInvalidPlaylist = errors.New("invalid playlist")
	// ErrInvalidSort is returned for unknown sort keys or orders.
	ErrInvalidSort = errors.New("invalid sort")
)

var playlistSortColumns = map[string]string{
	"name":      "p.name",
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
}

const playlistSelect = `
		SELECT p.id, p.user_id, p.name, COALESCE(p.description, ''), COALESCE(p.cover_image, ''),
		       p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM playlist_entries e WHERE e.playlist_id = p.id)
		FROM playlists p`

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.Description,
		&playlist.CoverImage, &playlist.CreatedAt, &playlist.UpdatedAt, &playlist.SongCount)
	return playlist, err
}

func validatePlaylist(playlist *models.Playlist) error {
	playlist.Name = strings.TrimSpace(playlist.Name)
	playlist.Description = strings.TrimSpace(playlist.Description)
	playlist.CoverImage = strings.TrimSpace(playlist.CoverImage)
	if playlist.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}
	return nil
}

// playlistOrderBy resolves the ORDER BY clause for a listing. Empty values
// default to newest first.
func playlistOrderBy(sortKey, order string) (string, error) {
	if sortKey == "" {
		sortKey = "createdAt"
	}
	column, ok := playlistSortColumns[sortKey]
	if !ok {
		return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidSort, sortKey)
	}

	direction := "DESC"
	switch strings.ToLower(order) {
	case "", "desc":
	case "asc":
		direction = "ASC"
	default:
		return "", fmt.Errorf("%w: order must be asc or desc", ErrInvalidSort)
	}
	return fmt.Sprintf("%s %s, p.id %s", column, direction, direction), nil
}

// ListPlaylists returns the user's playlists matching filter.
func (s *Store) ListPlaylists(ctx context.Context, userID int64, filter models.PlaylistFilter) ([]models.Playlist, error) {
	orderBy, err := playlistOrderBy(filter.Sort, filter.Order)
	if err != nil {
		return nil, err
	}

	query := playlistSelect + `
		WHERE p.user_id = $1`
	args := []any{userID}
	argIdx := 2

	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND p.name ILIKE $%d", argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argIdx, argIdx+1)
	args = append(args, pageSize(filter.Limit), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist returns a playlist owned by userID.
func (s *Store) GetPlaylist(ctx context.Context, userID, id int64) (models.Playlist, error) {
	playlist, err := scanPlaylist(s.db.QueryRowContext(ctx, playlistSelect+`
		WHERE p.id = $1 AND p.user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("get playlist: %w", err)
	}
	return playlist, nil
}

// CreatePlaylist persists a new, empty playlist for userID.
func (s *Store) CreatePlaylist(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error) {
	if err := validatePlaylist(&playlist); err != nil {
		return models.Playlist{}, err
	}

	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (user_id, name, description, cover_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`,
		userID, playlist.Name, nullIfEmpty(playlist.Description), nullIfEmpty(playlist.CoverImage), now,
	).Scan(&playlist.ID, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}

	playlist.UserID = userID
	playlist.SongCount = 0
	return playlist, nil
}

// UpdatePlaylist replaces the metadata of a playlist owned by userID.
// Membership is only changed through the ordering engine.
func (s *Store) UpdatePlaylist(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error) {
	if err := validatePlaylist(&playlist); err != nil {
		return models.Playlist{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $1, description = $2, cover_image = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`,
		playlist.Name, nullIfEmpty(playlist.Description), nullIfEmpty(playlist.CoverImage),
		time.Now().UTC(), playlist.ID, userID)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Playlist{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return models.Playlist{}, ErrPlaylistNotFound
	}

	return s.GetPlaylist(ctx, userID, playlist.ID)
}

// DeletePlaylist removes a playlist and its entries.
func (s *Store) DeletePlaylist(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
