package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"playdeck/internal/app/songs"
	"playdeck/internal/musicapi"
	"playdeck/internal/ordering"
	"playdeck/internal/playback"
	"playdeck/internal/store"
	"playdeck/shared/go/models"
)

const testUserID int64 = 7

type stubTokens struct{}

func (stubTokens) Verify(token string) (int64, error) {
	if token != "good" {
		return 0, errors.New("bad token")
	}
	return testUserID, nil
}

type stubUserService struct {
	signupErr error
	loginErr  error
	loggedOut []int64
}

func (s *stubUserService) Signup(context.Context, string, string) (int64, error) {
	if s.signupErr != nil {
		return 0, s.signupErr
	}
	return 11, nil
}

func (s *stubUserService) Login(context.Context, string, string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return "good", nil
}

func (s *stubUserService) Logout(_ context.Context, userID int64) error {
	s.loggedOut = append(s.loggedOut, userID)
	return nil
}

func (s *stubUserService) Me(_ context.Context, userID int64) (models.User, error) {
	return models.User{ID: userID, Username: "demo"}, nil
}

type stubSongService struct {
	listErr    error
	lastFilter models.SongFilter
	lastPatch  songs.Patch
}

func (s *stubSongService) List(_ context.Context, _ int64, filter models.SongFilter) ([]models.Song, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []models.Song{{ID: 1, Title: "A"}}, nil
}

func (s *stubSongService) Get(_ context.Context, _ int64, id int64) (models.Song, error) {
	if id == 404 {
		return models.Song{}, store.ErrSongNotFound
	}
	return models.Song{ID: id}, nil
}

func (s *stubSongService) Create(_ context.Context, _ int64, song models.Song) (models.Song, error) {
	if song.Title == "" {
		return models.Song{}, fmt.Errorf("%w: title is required", store.ErrInvalidSong)
	}
	song.ID = 5
	return song, nil
}

func (s *stubSongService) Update(_ context.Context, _ int64, id int64, patch songs.Patch) (models.Song, error) {
	s.lastPatch = patch
	return models.Song{ID: id}, nil
}

func (s *stubSongService) Delete(context.Context, int64, int64) error { return nil }

type stubPlaylistService struct {
	listErr      error
	addErr       error
	lastFilter   models.PlaylistFilter
	lastPosition *int
	lastSongID   int64
}

func (s *stubPlaylistService) List(_ context.Context, _ int64, filter models.PlaylistFilter) ([]models.Playlist, error) {
	s.lastFilter = filter
	return nil, s.listErr
}

func (s *stubPlaylistService) Get(_ context.Context, _ int64, id int64) (models.Playlist, error) {
	return models.Playlist{ID: id}, nil
}

func (s *stubPlaylistService) Create(_ context.Context, userID int64, p models.Playlist) (models.Playlist, error) {
	p.ID, p.UserID = 3, userID
	return p, nil
}

func (s *stubPlaylistService) Update(_ context.Context, _ int64, id int64, p models.Playlist) (models.Playlist, error) {
	p.ID = id
	return p, nil
}

func (s *stubPlaylistService) Delete(context.Context, int64, int64) error { return nil }

func (s *stubPlaylistService) Entries(context.Context, int64, int64, int, int) ([]models.EntryDetail, error) {
	return []models.EntryDetail{{ID: 1, Position: 1}}, nil
}

func (s *stubPlaylistService) AddSong(_ context.Context, _ int64, _ int64, songID int64, position *int) (models.EntryDetail, error) {
	s.lastSongID = songID
	s.lastPosition = position
	if s.addErr != nil {
		return models.EntryDetail{}, s.addErr
	}
	pos := 1
	if position != nil {
		pos = *position
	}
	return models.EntryDetail{ID: 9, Position: pos, Song: models.Song{ID: songID}}, nil
}

func (s *stubPlaylistService) RemoveSong(_ context.Context, _ int64, playlistID, songID int64) (models.PlaylistEntry, error) {
	if songID == 404 {
		return models.PlaylistEntry{}, ordering.ErrNotFound
	}
	return models.PlaylistEntry{PlaylistID: playlistID, SongID: songID, Position: 2}, nil
}

type stubPlayerService struct {
	lastVolume int
	lastIndex  *int
}

func (s *stubPlayerService) State(context.Context, int64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) Play(_ context.Context, _ int64, songID int64) (playback.State, error) {
	st := playback.Initial()
	st.CurrentSong = &models.Song{ID: songID}
	st.IsPlaying = true
	return st, nil
}

func (s *stubPlayerService) Toggle(context.Context, int64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) Next(context.Context, int64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) Previous(context.Context, int64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) SetVolume(_ context.Context, _ int64, volume int) (playback.State, error) {
	s.lastVolume = volume
	st := playback.Initial()
	st.Volume = playback.ClampVolume(volume)
	return st, nil
}

func (s *stubPlayerService) ReportProgress(context.Context, int64, float64, float64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) SetQueue(_ context.Context, _ int64, _ []int64, index *int) (playback.State, error) {
	s.lastIndex = index
	return playback.Initial(), nil
}

func (s *stubPlayerService) AddToQueue(context.Context, int64, int64) (playback.State, error) {
	return playback.Initial(), nil
}

func (s *stubPlayerService) PlayPlaylist(_ context.Context, _ int64, _ int64, index int) (playback.State, error) {
	s.lastIndex = &index
	return playback.Initial(), nil
}

type stubLibraryService struct {
	favorites map[int64]bool
}

func (s *stubLibraryService) Recent(context.Context, int64) ([]models.Song, error) {
	return []models.Song{}, nil
}

func (s *stubLibraryService) Favorites(context.Context, int64) ([]models.Song, error) {
	return []models.Song{}, nil
}

func (s *stubLibraryService) ToggleFavorite(_ context.Context, _ int64, songID int64) (bool, error) {
	s.favorites[songID] = !s.favorites[songID]
	return s.favorites[songID], nil
}

func (s *stubLibraryService) RemoveFavorite(_ context.Context, _ int64, songID int64) (bool, error) {
	was := s.favorites[songID]
	delete(s.favorites, songID)
	return was, nil
}

func (s *stubLibraryService) IsFavorite(_ context.Context, _ int64, songID int64) (bool, error) {
	return s.favorites[songID], nil
}

type stubSearchService struct {
	err error
}

func (s stubSearchService) SearchSongs(_ context.Context, query string, _ int) ([]models.Song, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Song{{Title: query, SourceType: models.SourceExternal}}, nil
}

type testServer struct {
	handler   http.Handler
	users     *stubUserService
	songs     *stubSongService
	playlists *stubPlaylistService
	player    *stubPlayerService
	library   *stubLibraryService
}

func newTestServer(t *testing.T, search SearchService) *testServer {
	t.Helper()
	ts := &testServer{
		users:     &stubUserService{},
		songs:     &stubSongService{},
		playlists: &stubPlaylistService{},
		player:    &stubPlayerService{},
		library:   &stubLibraryService{favorites: map[int64]bool{}},
	}
	if search == nil {
		search = stubSearchService{}
	}
	srv := New(Services{
		Users:     ts.users,
		Songs:     ts.songs,
		Playlists: ts.playlists,
		Player:    ts.player,
		Library:   ts.library,
		Search:    search,
	}, stubTokens{})
	ts.handler = srv.Routes()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func ptr[T any](v T) *T {
	return &v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong scheme", header: "Basic good"},
		{name: "invalid token", header: "Bearer nope"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Code != "UNAUTHORIZED" {
				t.Fatalf("unexpected code %q", resp.Code)
			}
		})
	}
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/signup", credentialsRequest{Username: "a", Password: "b"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	ts.users.signupErr = store.ErrUserExists
	rec = ts.do(t, http.MethodPost, "/api/v1/auth/signup", credentialsRequest{Username: "a", Password: "b"})
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != "USER_EXISTS" {
		t.Fatalf("expected USER_EXISTS conflict, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/login", credentialsRequest{Username: "a", Password: "b"})
	var token tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&token); err != nil || token.Token != "good" {
		t.Fatalf("unexpected login response %d %+v %v", rec.Code, token, err)
	}

	ts.users.loginErr = store.ErrInvalidCredentials
	rec = ts.do(t, http.MethodPost, "/api/v1/auth/login", credentialsRequest{Username: "a", Password: "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutUsesTokenUser(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(ts.users.loggedOut) != 1 || ts.users.loggedOut[0] != testUserID {
		t.Fatalf("expected logout for user %d, got %v", testUserID, ts.users.loggedOut)
	}
}

func TestAddSongToPlaylist(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/playlists/3/songs", addSongRequest{SongID: 8, Position: ptr(2)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.playlists.lastSongID != 8 || ts.playlists.lastPosition == nil || *ts.playlists.lastPosition != 2 {
		t.Fatalf("unexpected call song=%d position=%v", ts.playlists.lastSongID, ts.playlists.lastPosition)
	}
	var entry models.EntryDetail
	if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil || entry.Position != 2 {
		t.Fatalf("unexpected entry %+v %v", entry, err)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/playlists/3/songs", map[string]int64{"songId": 8})
	if rec.Code != http.StatusCreated || ts.playlists.lastPosition != nil {
		t.Fatalf("expected append without position, got %d %v", rec.Code, ts.playlists.lastPosition)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/playlists/3/songs", map[string]int64{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without songId, got %d", rec.Code)
	}
}

func TestAddSongErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate", fmt.Errorf("insert: %w", ordering.ErrDuplicate), http.StatusConflict, ordering.KindDuplicate},
		{"invalid position", ordering.ErrInvalidPosition, http.StatusBadRequest, ordering.KindInvalidPosition},
		{"playlist missing", store.ErrPlaylistNotFound, http.StatusNotFound, ordering.KindNotFound},
		{"song missing", store.ErrSongNotFound, http.StatusNotFound, ordering.KindNotFound},
		{"invariant", ordering.ErrInvariantViolation, http.StatusInternalServerError, ordering.KindInvariantViolation},
		{"storage", fmt.Errorf("%w: %w", ordering.ErrStorageFailure, errors.New("pq: secret detail")), http.StatusInternalServerError, ordering.KindStorageFailure},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.playlists.addErr = tc.err

			rec := ts.do(t, http.MethodPost, "/api/v1/playlists/3/songs", addSongRequest{SongID: 8})
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			resp := decodeError(t, rec)
			if resp.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, resp.Code)
			}
			if tc.wantStatus == http.StatusInternalServerError && resp.Error != http.StatusText(tc.wantStatus) {
				t.Fatalf("internal error detail leaked: %q", resp.Error)
			}
		})
	}
}

func TestRemoveSongFromPlaylist(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodDelete, "/api/v1/playlists/3/songs/5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var removed models.PlaylistEntry
	if err := json.NewDecoder(rec.Body).Decode(&removed); err != nil || removed.SongID != 5 || removed.Position != 2 {
		t.Fatalf("unexpected removed entry %+v %v", removed, err)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/playlists/3/songs/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListPlaylistsQuery(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/playlists?search=rock&sort=name&order=asc&limit=5&offset=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := models.PlaylistFilter{Search: "rock", Sort: "name", Order: "asc", Limit: 5, Offset: 10}
	if ts.playlists.lastFilter != want {
		t.Fatalf("unexpected filter %+v", ts.playlists.lastFilter)
	}

	ts.playlists.listErr = fmt.Errorf("%w: unknown sort key %q", store.ErrInvalidSort, "owner")
	rec = ts.do(t, http.MethodGet, "/api/v1/playlists?sort=owner", nil)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "INVALID_SORT" {
		t.Fatalf("expected INVALID_SORT, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/playlists?limit=ten", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestSongsEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/songs", songRequest{Artist: "x"})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "INVALID_SONG" {
		t.Fatalf("expected INVALID_SONG, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/songs/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPatch, "/api/v1/songs/2", map[string]string{"title": "New"})
	if rec.Code != http.StatusOK || ts.songs.lastPatch.Title == nil || *ts.songs.lastPatch.Title != "New" || ts.songs.lastPatch.Artist != nil {
		t.Fatalf("unexpected patch %d %+v", rec.Code, ts.songs.lastPatch)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/songs?search=lofi&limit=3", nil)
	if rec.Code != http.StatusOK || ts.songs.lastFilter.Search != "lofi" || ts.songs.lastFilter.Limit != 3 {
		t.Fatalf("unexpected list call %d %+v", rec.Code, ts.songs.lastFilter)
	}

	ts.songs.listErr = errors.New("connection refused")
	rec = ts.do(t, http.MethodGet, "/api/v1/songs", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestPlayerEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/player/play", playRequest{SongID: 4})
	var state playback.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil || state.CurrentSong == nil || state.CurrentSong.ID != 4 {
		t.Fatalf("unexpected play response %d %+v %v", rec.Code, state, err)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/player/volume", map[string]int{"volume": 140})
	if rec.Code != http.StatusOK || ts.player.lastVolume != 140 {
		t.Fatalf("unexpected volume call %d %d", rec.Code, ts.player.lastVolume)
	}
	rec = ts.do(t, http.MethodPost, "/api/v1/player/volume", map[string]int{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without volume, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/player/progress", progressRequest{Progress: -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative progress, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/player/queue", queueRequest{SongIDs: []int64{1, 2}})
	if rec.Code != http.StatusOK || ts.player.lastIndex != nil {
		t.Fatalf("expected queue without index, got %d %v", rec.Code, ts.player.lastIndex)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/player/queue/playlist/3", nil)
	if rec.Code != http.StatusOK || ts.player.lastIndex == nil || *ts.player.lastIndex != 0 {
		t.Fatalf("expected playlist playback from index 0, got %d %v", rec.Code, ts.player.lastIndex)
	}

	for _, path := range []string{"/api/v1/player/toggle", "/api/v1/player/next", "/api/v1/player/previous"} {
		if rec := ts.do(t, http.MethodPost, path, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/player", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for state, got %d", rec.Code)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/me/favorites/toggle", playRequest{SongID: 6})
	var fav favoriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&fav); err != nil || !fav.Favorite {
		t.Fatalf("expected favorite after toggle, got %d %+v %v", rec.Code, fav, err)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/me/favorites/6", nil)
	if err := json.NewDecoder(rec.Body).Decode(&fav); err != nil || !fav.Favorite {
		t.Fatalf("expected favorite check true, got %+v %v", fav, err)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/me/favorites/6", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = ts.do(t, http.MethodDelete, "/api/v1/me/favorites/6", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected idempotent delete, got %d", rec.Code)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/me/recent", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for recent, got %d", rec.Code)
	}
}

func TestSearchYouTube(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/search/youtube?q=lofi", nil)
	var body struct {
		Songs []models.Song `json:"songs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || len(body.Songs) != 1 || body.Songs[0].Title != "lofi" {
		t.Fatalf("unexpected search response %d %+v %v", rec.Code, body, err)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/search/youtube", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", rec.Code)
	}

	unavailable := newTestServer(t, stubSearchService{err: musicapi.ErrNotConfigured})
	rec = unavailable.do(t, http.MethodGet, "/api/v1/search/youtube?q=lofi", nil)
	if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Code != "SEARCH_UNAVAILABLE" {
		t.Fatalf("expected SEARCH_UNAVAILABLE, got %d", rec.Code)
	}
}
