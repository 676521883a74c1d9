package main

import (
	"net/http"

	"playdeck/internal/app/library"
	"playdeck/internal/app/player"
	"playdeck/internal/app/playlists"
	"playdeck/internal/app/songs"
	"playdeck/internal/app/users"
	"playdeck/internal/httpapi"
	"playdeck/internal/musicapi"
	"playdeck/internal/ordering"
	"playdeck/internal/playback"
	"playdeck/internal/store"
	"playdeck/shared/go/auth"
	"playdeck/shared/go/config"
	"playdeck/shared/go/middleware"
)

// dependencies are the long-lived collaborators shared by the services.
type dependencies struct {
	store    *store.Store
	engine   *ordering.Engine
	sessions *playback.Registry
	tokens   *auth.TokenManager
	search   musicapi.SearchClient
}

func newHTTPHandler(cfg *config.Config, deps dependencies, recents library.Store) http.Handler {
	songSvc := songs.New(deps.store)
	playlistSvc := playlists.New(deps.store, deps.engine)

	router := httpapi.New(httpapi.Services{
		Users:     users.New(deps.store, deps.tokens, deps.sessions),
		Songs:     songSvc,
		Playlists: playlistSvc,
		Player:    player.New(deps.sessions, songSvc, playlistSvc),
		Library:   library.New(recents, songSvc),
		Search:    deps.search,
	}, deps.tokens).Routes()

	var handler http.Handler = router
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
