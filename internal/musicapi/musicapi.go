// Package musicapi searches external providers for songs that can be
// imported into the catalog.
package musicapi

import (
	"context"
	"errors"
	"time"

	"playdeck/shared/go/models"
)

// ErrNotConfigured is returned when a provider has no credentials.
var ErrNotConfigured = errors.New("music search is not configured")

// DefaultSearchLimit is the number of candidates returned when the caller
// does not ask for a specific count.
const DefaultSearchLimit = 10

// MaxSearchLimit caps a single search request.
const MaxSearchLimit = 50

// SearchClient finds candidate songs on an external provider. Returned songs
// are not persisted; ID, UserID and timestamps are zero.
type SearchClient interface {
	SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error)
}

// Config holds configuration for music API clients.
type Config struct {
	YouTubeAPIKey string
	// BaseURL overrides the YouTube Data API endpoint.
	BaseURL string

	// RatePerSecond bounds outgoing requests. Zero or less means the default.
	RatePerSecond  float64
	RequestTimeout time.Duration
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}
