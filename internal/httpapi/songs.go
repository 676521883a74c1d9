package httpapi

import (
	"net/http"

	"playdeck/internal/app/songs"
	"playdeck/shared/go/models"
)

type songRequest struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Duration   string `json:"duration"`
	Thumbnail  string `json:"thumbnail"`
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceId"`
	FileURL    string `json:"fileUrl"`
}

func (s *Server) listSongs(w http.ResponseWriter, r *http.Request) {
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

	filter := models.SongFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	result, err := s.songs.List(r.Context(), currentUser(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: result})
}

func (s *Server) getSong(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	song, err := s.songs.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) createSong(w http.ResponseWriter, r *http.Request) {
	var req songRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	song := models.Song{
		Title:      req.Title,
		Artist:     req.Artist,
		Duration:   req.Duration,
		Thumbnail:  req.Thumbnail,
		SourceType: models.SourceType(req.SourceType),
		SourceID:   req.SourceID,
		FileURL:    req.FileURL,
	}
	created, err := s.songs.Create(r.Context(), currentUser(r), song)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateSong(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var patch songs.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := s.songs.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteSong(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.songs.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
