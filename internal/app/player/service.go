package player

import (
	"context"

	"playdeck/internal/playback"
	"playdeck/shared/go/models"
)

// Sessions hands out the per-user playback session.
type Sessions interface {
	Session(userID int64) *playback.Session
}

// Songs resolves catalog songs visible to a user.
type Songs interface {
	Get(ctx context.Context, userID, id int64) (models.Song, error)
	Resolve(ctx context.Context, userID int64, ids []int64) ([]models.Song, error)
}

// Playlists loads a playlist's songs in position order.
type Playlists interface {
	Songs(ctx context.Context, userID, playlistID int64) ([]models.Song, error)
}

// Service drives a user's playback session from catalog identifiers.
type Service interface {
	State(ctx context.Context, userID int64) (playback.State, error)
	Play(ctx context.Context, userID, songID int64) (playback.State, error)
	Toggle(ctx context.Context, userID int64) (playback.State, error)
	Next(ctx context.Context, userID int64) (playback.State, error)
	Previous(ctx context.Context, userID int64) (playback.State, error)
	SetVolume(ctx context.Context, userID int64, volume int) (playback.State, error)
	ReportProgress(ctx context.Context, userID int64, progress, duration float64) (playback.State, error)
	SetQueue(ctx context.Context, userID int64, songIDs []int64, index *int) (playback.State, error)
	AddToQueue(ctx context.Context, userID, songID int64) (playback.State, error)
	PlayPlaylist(ctx context.Context, userID, playlistID int64, index int) (playback.State, error)
}

type service struct {
	sessions  Sessions
	songs     Songs
	playlists Playlists
}

// New constructs a player Service.
func New(sessions Sessions, songs Songs, playlists Playlists) Service {
	return &service{sessions: sessions, songs: songs, playlists: playlists}
}

func (s *service) dispatch(ctx context.Context, userID int64, ev playback.Event) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	return s.sessions.Session(userID).Dispatch(ctx, ev), nil
}

func (s *service) State(ctx context.Context, userID int64) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	return s.sessions.Session(userID).State(), nil
}

func (s *service) Play(ctx context.Context, userID, songID int64) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	song, err := s.songs.Get(ctx, userID, songID)
	if err != nil {
		return playback.State{}, err
	}
	return s.dispatch(ctx, userID, playback.PlaySong{Song: song})
}

func (s *service) Toggle(ctx context.Context, userID int64) (playback.State, error) {
	return s.dispatch(ctx, userID, playback.TogglePlay{})
}

func (s *service) Next(ctx context.Context, userID int64) (playback.State, error) {
	return s.dispatch(ctx, userID, playback.PlayNext{})
}

func (s *service) Previous(ctx context.Context, userID int64) (playback.State, error) {
	return s.dispatch(ctx, userID, playback.PlayPrevious{})
}

func (s *service) SetVolume(ctx context.Context, userID int64, volume int) (playback.State, error) {
	return s.dispatch(ctx, userID, playback.SetVolume{Volume: playback.ClampVolume(volume)})
}

func (s *service) ReportProgress(ctx context.Context, userID int64, progress, duration float64) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	return s.sessions.Session(userID).ReportProgress(ctx, progress, duration), nil
}

// SetQueue replaces the queue. With an index the song at that index starts
// playing; without one the current song is kept.
func (s *service) SetQueue(ctx context.Context, userID int64, songIDs []int64, index *int) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	songs, err := s.songs.Resolve(ctx, userID, songIDs)
	if err != nil {
		return playback.State{}, err
	}
	if index == nil {
		return s.dispatch(ctx, userID, playback.SetQueue{Songs: songs})
	}
	return s.dispatch(ctx, userID, playback.PlayQueue{Songs: songs, Index: *index})
}

func (s *service) AddToQueue(ctx context.Context, userID, songID int64) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	song, err := s.songs.Get(ctx, userID, songID)
	if err != nil {
		return playback.State{}, err
	}
	return s.dispatch(ctx, userID, playback.AddToQueue{Song: song})
}

func (s *service) PlayPlaylist(ctx context.Context, userID, playlistID int64, index int) (playback.State, error) {
	if err := ctx.Err(); err != nil {
		return playback.State{}, err
	}
	songs, err := s.playlists.Songs(ctx, userID, playlistID)
	if err != nil {
		return playback.State{}, err
	}
	return s.dispatch(ctx, userID, playback.PlayQueue{Songs: songs, Index: index})
}
