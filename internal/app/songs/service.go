package songs

import (
	"context"
	"fmt"

	"playdeck/internal/store"
	"playdeck/shared/go/models"
)

// Store captures the catalog persistence needs.
type Store interface {
	CreateSong(ctx context.Context, userID int64, song models.Song) (models.Song, error)
	GetSong(ctx context.Context, id int64) (models.Song, error)
	ListSongs(ctx context.Context, viewerID int64, filter models.SongFilter) ([]models.Song, error)
	SongsByIDs(ctx context.Context, ids []int64) ([]models.Song, error)
	UpdateSong(ctx context.Context, userID int64, song models.Song) (models.Song, error)
	DeleteSong(ctx context.Context, userID, id int64) error
}

// Patch holds the fields of a partial song update. Nil fields are kept.
type Patch struct {
	Title      *string `json:"title"`
	Artist     *string `json:"artist"`
	Duration   *string `json:"duration"`
	Thumbnail  *string `json:"thumbnail"`
	SourceType *string `json:"sourceType"`
	SourceID   *string `json:"sourceId"`
	FileURL    *string `json:"fileUrl"`
}

// Service exposes catalog operations scoped to the calling user.
type Service interface {
	List(ctx context.Context, userID int64, filter models.SongFilter) ([]models.Song, error)
	Get(ctx context.Context, userID, id int64) (models.Song, error)
	Resolve(ctx context.Context, userID int64, ids []int64) ([]models.Song, error)
	Create(ctx context.Context, userID int64, song models.Song) (models.Song, error)
	Update(ctx context.Context, userID, id int64, patch Patch) (models.Song, error)
	Delete(ctx context.Context, userID, id int64) error
}

type service struct {
	store Store
}

// New constructs a song Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, userID int64, filter models.SongFilter) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx, userID, filter)
}

func (s *service) Get(ctx context.Context, userID, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		return models.Song{}, err
	}
	if !song.VisibleTo(userID) {
		return models.Song{}, store.ErrSongNotFound
	}
	return song, nil
}

// Resolve loads songs in the order of ids, failing if any is not visible.
func (s *service) Resolve(ctx context.Context, userID int64, ids []int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	songs, err := s.store.SongsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		if !song.VisibleTo(userID) {
			return nil, fmt.Errorf("song %d: %w", song.ID, store.ErrSongNotFound)
		}
	}
	return songs, nil
}

func (s *service) Create(ctx context.Context, userID int64, song models.Song) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.CreateSong(ctx, userID, song)
}

func (s *service) Update(ctx context.Context, userID, id int64, patch Patch) (models.Song, error) {
	song, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Song{}, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&song.Title, patch.Title)
	apply(&song.Artist, patch.Artist)
	apply(&song.Duration, patch.Duration)
	apply(&song.Thumbnail, patch.Thumbnail)
	apply(&song.SourceID, patch.SourceID)
	apply(&song.FileURL, patch.FileURL)
	if patch.SourceType != nil {
		song.SourceType = models.SourceType(*patch.SourceType)
	}

	return s.store.UpdateSong(ctx, userID, song)
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSong(ctx, userID, id)
}
