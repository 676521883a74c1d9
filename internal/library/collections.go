// Package library keeps each user's recently played songs and favorites.
package library

import "playdeck/shared/go/models"

// HistoryCapacity bounds the recently played list.
const HistoryCapacity = 20

// RecordPlay moves song to the front of history, dropping any earlier entry
// with the same id and anything past HistoryCapacity.
func RecordPlay(history []models.Song, song models.Song) []models.Song {
	updated := make([]models.Song, 0, min(len(history)+1, HistoryCapacity))
	updated = append(updated, song)
	for _, played := range history {
		if len(updated) == HistoryCapacity {
			break
		}
		if played.ID != song.ID {
			updated = append(updated, played)
		}
	}
	return updated
}

// ToggleFavorite removes song when present and appends it otherwise. It
// reports whether the song is a favorite afterwards.
func ToggleFavorite(favorites []models.Song, song models.Song) ([]models.Song, bool) {
	if remaining, removed := RemoveFavorite(favorites, song.ID); removed {
		return remaining, false
	}
	updated := make([]models.Song, len(favorites), len(favorites)+1)
	copy(updated, favorites)
	return append(updated, song), true
}

// RemoveFavorite drops songID from favorites and reports whether it was there.
func RemoveFavorite(favorites []models.Song, songID int64) ([]models.Song, bool) {
	updated := make([]models.Song, 0, len(favorites))
	removed := false
	for _, favorite := range favorites {
		if favorite.ID == songID {
			removed = true
			continue
		}
		updated = append(updated, favorite)
	}
	return updated, removed
}

// Contains reports whether songs holds songID.
func Contains(songs []models.Song, songID int64) bool {
	for _, song := range songs {
		if song.ID == songID {
			return true
		}
	}
	return false
}
