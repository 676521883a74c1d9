package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	libstore "playdeck/internal/library"
	"playdeck/internal/musicapi"
	"playdeck/internal/ordering"
	"playdeck/internal/playback"
	"playdeck/internal/store"
	"playdeck/shared/go/auth"
	"playdeck/shared/go/config"
	"playdeck/shared/go/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("playdeck exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.SetGlobal(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	kv, closeKV, err := openLibraryKV(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeKV()

	dataStore := store.New(db)
	engine := ordering.New(dataStore, dataStore)
	recents := libstore.New(kv)

	if cfg.SeedDemoData {
		if err := bootstrapDemoData(ctx, dataStore, engine); err != nil {
			return err
		}
	}

	deps := dependencies{
		store:    dataStore,
		engine:   engine,
		sessions: playback.NewRegistry(recents),
		tokens:   auth.NewTokenManager(cfg.Security.JWTSecret),
		search: musicapi.NewYouTubeClient(musicapi.Config{
			YouTubeAPIKey: cfg.Search.YouTubeAPIKey,
			RatePerSecond: cfg.Search.RatePerSecond,
		}),
	}
	if cfg.Search.YouTubeAPIKey == "" {
		log.Warn().Msg("YOUTUBE_API_KEY not set, external search disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, deps, recents),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
