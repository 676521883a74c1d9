package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"playdeck/internal/ordering"
	"playdeck/internal/store"
	"playdeck/shared/go/models"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
	demoPlaylist = "Demo Mix"
)

var demoSongs = []models.Song{
	{Title: "Teardrop", Artist: "Massive Attack", Duration: "5:30", SourceID: "u7K72X4eo_s"},
	{Title: "Glory Box", Artist: "Portishead", Duration: "5:06", SourceID: "4qQyUi4zfDs"},
	{Title: "No Surprises", Artist: "Radiohead", Duration: "3:49", SourceID: "u5CVsCnxyXg"},
	{Title: "Kerala", Artist: "Bonobo", Duration: "4:09", SourceID: "WaXmgEnDRZk"},
	{Title: "Says", Artist: "Nils Frahm", Duration: "8:18", SourceID: "dIwwjy4slI8"},
}

// bootstrapDemoData creates the demo account, a few catalog songs and a
// playlist holding them. It is a no-op once the demo user owns a playlist.
func bootstrapDemoData(ctx context.Context, dataStore *store.Store, engine *ordering.Engine) error {
	userID, err := ensureDemoUser(ctx, dataStore)
	if err != nil {
		return err
	}

	existing, err := dataStore.ListPlaylists(ctx, userID, models.PlaylistFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("list demo playlists: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	playlist, err := dataStore.CreatePlaylist(ctx, userID, models.Playlist{
		Name:        demoPlaylist,
		Description: "A few songs to try the player with.",
	})
	if err != nil {
		return fmt.Errorf("create demo playlist: %w", err)
	}

	for _, seed := range demoSongs {
		seed.SourceType = models.SourceExternal
		seed.Thumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", seed.SourceID)

		song, err := dataStore.CreateSong(ctx, userID, seed)
		if err != nil {
			return fmt.Errorf("create demo song %q: %w", seed.Title, err)
		}
		if _, err := engine.Insert(ctx, userID, playlist.ID, song.ID, nil); err != nil {
			return fmt.Errorf("add demo song %q: %w", seed.Title, err)
		}
	}

	log.Info().Int64("user_id", userID).Int("songs", len(demoSongs)).Msg("seeded demo data")
	return nil
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) (int64, error) {
	userID, err := dataStore.CreateUser(ctx, demoUsername, demoPassword)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, store.ErrUserExists) {
		return 0, fmt.Errorf("bootstrap demo user: %w", err)
	}
	userID, err = dataStore.UserIDByUsername(ctx, demoUsername)
	if err != nil {
		return 0, fmt.Errorf("lookup demo user: %w", err)
	}
	return userID, nil
}
