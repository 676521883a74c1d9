package httpapi

import (
	"net/http"

	"playdeck/shared/go/models"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
}

type addSongRequest struct {
	SongID   int64 `json:"songId"`
	Position *int  `json:"position"`
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit", Code: "BAD_REQUEST"})
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid offset", Code: "BAD_REQUEST"})
		return
	}

	query := r.URL.Query()
	filter := models.PlaylistFilter{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
		Limit:  limit,
		Offset: offset,
	}
	playlists, err := s.playlists.List(r.Context(), currentUser(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	playlist, err := s.playlists.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.playlists.Create(r.Context(), currentUser(r), models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.playlists.Update(r.Context(), currentUser(r), id, models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.playlists.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit", Code: "BAD_REQUEST"})
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid offset", Code: "BAD_REQUEST"})
		return
	}

	entries, err := s.playlists.Entries(r.Context(), currentUser(r), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Entries []models.EntryDetail `json:"entries"`
	}{Entries: entries})
}

func (s *Server) addSongToPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var req addSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SongID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "songId is required", Code: "BAD_REQUEST"})
		return
	}

	entry, err := s.playlists.AddSong(r.Context(), currentUser(r), playlistID, req.SongID, req.Position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) removeSongFromPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	songID, ok := parseIDParam(w, r, "songId")
	if !ok {
		return
	}

	removed, err := s.playlists.RemoveSong(r.Context(), currentUser(r), playlistID, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}
