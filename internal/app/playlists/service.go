package playlists

import (
	"context"

	"playdeck/shared/go/models"
)

// Store captures the persistence needs for playlist metadata.
type Store interface {
	ListPlaylists(ctx context.Context, userID int64, filter models.PlaylistFilter) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, userID, id int64) (models.Playlist, error)
	CreatePlaylist(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, userID, id int64) error
}

// Engine keeps playlist positions dense while songs are added and removed.
type Engine interface {
	Insert(ctx context.Context, ownerID, playlistID, songID int64, desired *int) (models.EntryDetail, error)
	Remove(ctx context.Context, ownerID, playlistID, songID int64) (models.PlaylistEntry, error)
	List(ctx context.Context, ownerID, playlistID int64, limit, offset int) ([]models.EntryDetail, error)
	Songs(ctx context.Context, ownerID, playlistID int64) ([]models.Song, error)
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context, userID int64, filter models.PlaylistFilter) ([]models.Playlist, error)
	Get(ctx context.Context, userID, id int64) (models.Playlist, error)
	Create(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error)
	Update(ctx context.Context, userID, id int64, playlist models.Playlist) (models.Playlist, error)
	Delete(ctx context.Context, userID, id int64) error
	Entries(ctx context.Context, userID, playlistID int64, limit, offset int) ([]models.EntryDetail, error)
	AddSong(ctx context.Context, userID, playlistID, songID int64, position *int) (models.EntryDetail, error)
	RemoveSong(ctx context.Context, userID, playlistID, songID int64) (models.PlaylistEntry, error)
	Songs(ctx context.Context, userID, playlistID int64) ([]models.Song, error)
}

type service struct {
	store  Store
	engine Engine
}

// New constructs a Service backed by the provided Store and Engine.
func New(store Store, engine Engine) Service {
	return &service{store: store, engine: engine}
}

func (s *service) List(ctx context.Context, userID int64, filter models.PlaylistFilter) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, userID, filter)
}

func (s *service) Get(ctx context.Context, userID, id int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.GetPlaylist(ctx, userID, id)
}

func (s *service) Create(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, userID, playlist)
}

func (s *service) Update(ctx context.Context, userID, id int64, playlist models.Playlist) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	playlist.ID = id
	return s.store.UpdatePlaylist(ctx, userID, playlist)
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, userID, id)
}

func (s *service) Entries(ctx context.Context, userID, playlistID int64, limit, offset int) ([]models.EntryDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.List(ctx, userID, playlistID, limit, offset)
}

// AddSong inserts songID at position, or appends it when position is nil.
func (s *service) AddSong(ctx context.Context, userID, playlistID, songID int64, position *int) (models.EntryDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.EntryDetail{}, err
	}
	return s.engine.Insert(ctx, userID, playlistID, songID, position)
}

func (s *service) RemoveSong(ctx context.Context, userID, playlistID, songID int64) (models.PlaylistEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.PlaylistEntry{}, err
	}
	return s.engine.Remove(ctx, userID, playlistID, songID)
}

func (s *service) Songs(ctx context.Context, userID, playlistID int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.Songs(ctx, userID, playlistID)
}
