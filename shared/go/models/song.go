package models

import "time"

// SourceType identifies where a song's audio comes from.
type SourceType string

const (
	SourceExternal SourceType = "external"
	SourceLocal    SourceType = "local"

	// sourceYouTube is the legacy name for external songs.
	sourceYouTube SourceType = "youtube"
)

// ParseSourceType normalizes user input into a known SourceType.
func ParseSourceType(raw string) (SourceType, bool) {
	switch SourceType(raw) {
	case SourceExternal, sourceYouTube:
		return SourceExternal, true
	case SourceLocal:
		return SourceLocal, true
	default:
		return "", false
	}
}

// Song is a catalog entry that can be queued and added to playlists.
type Song struct {
	ID         int64      `json:"id" db:"id"`
	Title      string     `json:"title" db:"title"`
	Artist     string     `json:"artist" db:"artist"`
	Duration   string     `json:"duration" db:"duration"`
	Thumbnail  string     `json:"thumbnail" db:"thumbnail"`
	SourceType SourceType `json:"sourceType" db:"source_type"`
	SourceID   string     `json:"sourceId" db:"source_id"`
	FileURL    string     `json:"fileUrl,omitempty" db:"file_url"`
	UserID     *int64     `json:"userId,omitempty" db:"user_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// VisibleTo reports whether the song is part of the user's catalog scope.
// External songs are shared; local uploads belong to their owner.
func (s Song) VisibleTo(userID int64) bool {
	if s.SourceType != SourceLocal || s.UserID == nil {
		return true
	}
	return *s.UserID == userID
}
