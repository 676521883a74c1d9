package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"playdeck/internal/app/songs"
	"playdeck/internal/ordering"
	"playdeck/internal/playback"
	"playdeck/shared/go/logging"
	"playdeck/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (models.User, error)
}

// SongService coordinates catalog operations.
type SongService interface {
	List(ctx context.Context, userID int64, filter models.SongFilter) ([]models.Song, error)
	Get(ctx context.Context, userID, id int64) (models.Song, error)
	Create(ctx context.Context, userID int64, song models.Song) (models.Song, error)
	Update(ctx context.Context, userID, id int64, patch songs.Patch) (models.Song, error)
	Delete(ctx context.Context, userID, id int64) error
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context, userID int64, filter models.PlaylistFilter) ([]models.Playlist, error)
	Get(ctx context.Context, userID, id int64) (models.Playlist, error)
	Create(ctx context.Context, userID int64, playlist models.Playlist) (models.Playlist, error)
	Update(ctx context.Context, userID, id int64, playlist models.Playlist) (models.Playlist, error)
	Delete(ctx context.Context, userID, id int64) error
	Entries(ctx context.Context, userID, playlistID int64, limit, offset int) ([]models.EntryDetail, error)
	AddSong(ctx context.Context, userID, playlistID, songID int64, position *int) (models.EntryDetail, error)
	RemoveSong(ctx context.Context, userID, playlistID, songID int64) (models.PlaylistEntry, error)
}

// PlayerService drives a user's playback session.
type PlayerService interface {
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

// LibraryService exposes recently played songs and favorites.
type LibraryService interface {
	Recent(ctx context.Context, userID int64) ([]models.Song, error)
	Favorites(ctx context.Context, userID int64) ([]models.Song, error)
	ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, songID int64) (bool, error)
	IsFavorite(ctx context.Context, userID, songID int64) (bool, error)
}

// SearchService finds importable songs on external providers.
type SearchService interface {
	SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error)
}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Services bundles the application services the server routes to.
type Services struct {
	Users     UserService
	Songs     SongService
	Playlists PlaylistService
	Player    PlayerService
	Library   LibraryService
	Search    SearchService
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	songs     SongService
	playlists PlaylistService
	player    PlayerService
	library   LibraryService
	search    SearchService
	tokens    TokenVerifier
}

// New configures a Server with the given services and token verifier.
func New(services Services, tokens TokenVerifier) *Server {
	return &Server{
		users:     services.Users,
		songs:     services.Songs,
		playlists: services.Playlists,
		player:    services.Player,
		library:   services.Library,
		search:    services.Search,
		tokens:    tokens,
	}
}

// Routes exposes the HTTP handlers. Everything below /api/v1 except signup
// and login requires a bearer token.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireAuth)

	protected.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)

	protected.HandleFunc("/songs", s.listSongs).Methods(http.MethodGet)
	protected.HandleFunc("/songs", s.createSong).Methods(http.MethodPost)
	protected.HandleFunc("/songs/{id:[0-9]+}", s.getSong).Methods(http.MethodGet)
	protected.HandleFunc("/songs/{id:[0-9]+}", s.updateSong).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/songs/{id:[0-9]+}", s.deleteSong).Methods(http.MethodDelete)

	protected.HandleFunc("/playlists", s.listPlaylists).Methods(http.MethodGet)
	protected.HandleFunc("/playlists", s.createPlaylist).Methods(http.MethodPost)
	protected.HandleFunc("/playlists/{id:[0-9]+}", s.getPlaylist).Methods(http.MethodGet)
	protected.HandleFunc("/playlists/{id:[0-9]+}", s.updatePlaylist).Methods(http.MethodPut)
	protected.HandleFunc("/playlists/{id:[0-9]+}", s.deletePlaylist).Methods(http.MethodDelete)
	protected.HandleFunc("/playlists/{id:[0-9]+}/songs", s.listPlaylistSongs).Methods(http.MethodGet)
	protected.HandleFunc("/playlists/{id:[0-9]+}/songs", s.addSongToPlaylist).Methods(http.MethodPost)
	protected.HandleFunc("/playlists/{id:[0-9]+}/songs/{songId:[0-9]+}", s.removeSongFromPlaylist).Methods(http.MethodDelete)

	protected.HandleFunc("/player", s.playerState).Methods(http.MethodGet)
	protected.HandleFunc("/player/play", s.playerPlay).Methods(http.MethodPost)
	protected.HandleFunc("/player/toggle", s.playerToggle).Methods(http.MethodPost)
	protected.HandleFunc("/player/next", s.playerNext).Methods(http.MethodPost)
	protected.HandleFunc("/player/previous", s.playerPrevious).Methods(http.MethodPost)
	protected.HandleFunc("/player/volume", s.playerVolume).Methods(http.MethodPost)
	protected.HandleFunc("/player/progress", s.playerProgress).Methods(http.MethodPost)
	protected.HandleFunc("/player/queue", s.playerQueue).Methods(http.MethodPost)
	protected.HandleFunc("/player/queue/add", s.playerAddToQueue).Methods(http.MethodPost)
	protected.HandleFunc("/player/queue/playlist/{id:[0-9]+}", s.playerPlayPlaylist).Methods(http.MethodPost)

	protected.HandleFunc("/me/recent", s.listRecent).Methods(http.MethodGet)
	protected.HandleFunc("/me/favorites", s.listFavorites).Methods(http.MethodGet)
	protected.HandleFunc("/me/favorites/toggle", s.toggleFavorite).Methods(http.MethodPost)
	protected.HandleFunc("/me/favorites/{songId:[0-9]+}", s.checkFavorite).Methods(http.MethodGet)
	protected.HandleFunc("/me/favorites/{songId:[0-9]+}", s.removeFavorite).Methods(http.MethodDelete)

	protected.HandleFunc("/search/youtube", s.searchYouTube).Methods(http.MethodGet)

	return router
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// requireAuth resolves the bearer token and stores the user id on the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := parseBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token", Code: "UNAUTHORIZED"})
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token", Code: "UNAUTHORIZED"})
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
	})
}

// currentUser returns the id placed on the context by requireAuth.
func currentUser(r *http.Request) int64 {
	userID, _ := logging.UserID(r.Context())
	return userID
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name, Code: "BAD_REQUEST"})
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload", Code: "BAD_REQUEST"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps service errors onto status codes and error codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().
			Err(err).
			Str("code", code).
			Str("path", r.URL.Path).
			Msg("request failed")
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func classifyError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "CANCELED"
	}
	kind := ordering.Kind(err)
	return kindStatus[kind], kind
}
