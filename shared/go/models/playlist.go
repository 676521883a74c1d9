package models

import "time"

// Playlist captures a user-curated, ordered list of songs.
type Playlist struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CoverImage  string    `json:"coverImage,omitempty" db:"cover_image"`
	SongCount   int       `json:"songCount" db:"song_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PlaylistEntry is one song's membership in one playlist.
type PlaylistEntry struct {
	ID         int64     `json:"id" db:"id"`
	PlaylistID int64     `json:"playlistId" db:"playlist_id"`
	SongID     int64     `json:"songId" db:"song_id"`
	Position   int       `json:"position" db:"position"`
	AddedAt    time.Time `json:"addedAt" db:"added_at"`
}

// EntryDetail is a playlist entry joined with its song.
type EntryDetail struct {
	ID       int64     `json:"id"`
	Position int       `json:"position"`
	AddedAt  time.Time `json:"addedAt"`
	Song     Song      `json:"song"`
}

// PlaylistFilter narrows and orders playlist listings.
type PlaylistFilter struct {
	Search string
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// SongFilter narrows catalog listings.
type SongFilter struct {
	Search string
	UserID *int64
	Limit  int
	Offset int
}
