package library

import (
	"context"

	"playdeck/shared/go/models"
)

// Store persists a user's recently played songs and favorites.
type Store interface {
	Recent(ctx context.Context, userID int64) ([]models.Song, error)
	Favorites(ctx context.Context, userID int64) ([]models.Song, error)
	ToggleFavorite(ctx context.Context, userID int64, song models.Song) (bool, error)
	RemoveFavorite(ctx context.Context, userID, songID int64) (bool, error)
	IsFavorite(ctx context.Context, userID, songID int64) (bool, error)
}

// Songs resolves catalog songs visible to a user.
type Songs interface {
	Get(ctx context.Context, userID, id int64) (models.Song, error)
}

// Service describes high level library operations used by HTTP handlers.
type Service interface {
	Recent(ctx context.Context, userID int64) ([]models.Song, error)
	Favorites(ctx context.Context, userID int64) ([]models.Song, error)
	ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, songID int64) (bool, error)
	IsFavorite(ctx context.Context, userID, songID int64) (bool, error)
}

type service struct {
	store Store
	songs Songs
}

// New constructs a library Service backed by the given store.
func New(st Store, songs Songs) Service {
	return &service{store: st, songs: songs}
}

func (s *service) Recent(ctx context.Context, userID int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Recent(ctx, userID)
}

func (s *service) Favorites(ctx context.Context, userID int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Favorites(ctx, userID)
}

// ToggleFavorite flips songID's favorite flag and reports whether it is now a
// favorite.
func (s *service) ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	song, err := s.songs.Get(ctx, userID, songID)
	if err != nil {
		return false, err
	}
	return s.store.ToggleFavorite(ctx, userID, song)
}

// RemoveFavorite works on ids alone so favorites of deleted songs can still
// be cleared.
func (s *service) RemoveFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.RemoveFavorite(ctx, userID, songID)
}

func (s *service) IsFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.IsFavorite(ctx, userID, songID)
}
