package httpapi

import (
	"net/http"
	"strings"

	"playdeck/shared/go/models"
)

func (s *Server) searchYouTube(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter q is required", Code: "BAD_REQUEST"})
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit", Code: "BAD_REQUEST"})
		return
	}

	found, err := s.search.SearchSongs(r.Context(), query, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: found})
}
