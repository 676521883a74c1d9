package library

import (
	"context"
	"encoding/json"
	"fmt"

	"playdeck/shared/go/models"
)

// Library persists recently played songs and favorites per user as JSON
// documents in a KV.
type Library struct {
	kv KV
}

// New creates a Library backed by kv.
func New(kv KV) *Library {
	return &Library{kv: kv}
}

func recentKey(userID int64) string {
	return fmt.Sprintf("user:%d:recent", userID)
}

func favoritesKey(userID int64) string {
	return fmt.Sprintf("user:%d:favorites", userID)
}

// RecordPlay moves song to the front of the user's recent history.
func (l *Library) RecordPlay(ctx context.Context, userID int64, song models.Song) error {
	return l.update(ctx, recentKey(userID), func(history []models.Song) ([]models.Song, error) {
		return RecordPlay(history, song), nil
	})
}

// Recent returns the user's history, most recent first.
func (l *Library) Recent(ctx context.Context, userID int64) ([]models.Song, error) {
	return l.load(ctx, recentKey(userID))
}

// ToggleFavorite flips song's membership in the user's favorites and
// reports whether it is a favorite afterwards.
func (l *Library) ToggleFavorite(ctx context.Context, userID int64, song models.Song) (bool, error) {
	var favorite bool
	err := l.update(ctx, favoritesKey(userID), func(favorites []models.Song) ([]models.Song, error) {
		var updated []models.Song
		updated, favorite = ToggleFavorite(favorites, song)
		return updated, nil
	})
	if err != nil {
		return false, err
	}
	return favorite, nil
}

// RemoveFavorite drops songID from the user's favorites and reports whether
// it was present.
func (l *Library) RemoveFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	var removed bool
	err := l.update(ctx, favoritesKey(userID), func(favorites []models.Song) ([]models.Song, error) {
		var updated []models.Song
		updated, removed = RemoveFavorite(favorites, songID)
		return updated, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Favorites returns the user's favorites in the order they were added.
func (l *Library) Favorites(ctx context.Context, userID int64) ([]models.Song, error) {
	return l.load(ctx, favoritesKey(userID))
}

// IsFavorite reports whether songID is one of the user's favorites.
func (l *Library) IsFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	favorites, err := l.Favorites(ctx, userID)
	if err != nil {
		return false, err
	}
	return Contains(favorites, songID), nil
}

func (l *Library) load(ctx context.Context, key string) ([]models.Song, error) {
	raw, err := l.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeSongs(key, raw)
}

func (l *Library) update(ctx context.Context, key string, fn func([]models.Song) ([]models.Song, error)) error {
	err := l.kv.Update(ctx, key, func(current []byte) ([]byte, error) {
		songs, err := decodeSongs(key, current)
		if err != nil {
			return nil, err
		}
		updated, err := fn(songs)
		if err != nil {
			return nil, err
		}
		return json.Marshal(updated)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

func decodeSongs(key string, raw []byte) ([]models.Song, error) {
	if len(raw) == 0 {
		return []models.Song{}, nil
	}
	var songs []models.Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}
