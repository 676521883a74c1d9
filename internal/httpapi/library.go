package httpapi

import (
	"net/http"

	"playdeck/shared/go/models"
)

type favoriteResponse struct {
	SongID   int64 `json:"songId"`
	Favorite bool  `json:"favorite"`
}

func (s *Server) listRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := s.library.Recent(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: recent})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.library.Favorites(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: favorites})
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SongID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "songId is required", Code: "BAD_REQUEST"})
		return
	}

	favorite, err := s.library.ToggleFavorite(r.Context(), currentUser(r), req.SongID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{SongID: req.SongID, Favorite: favorite})
}

func (s *Server) checkFavorite(w http.ResponseWriter, r *http.Request) {
	songID, ok := parseIDParam(w, r, "songId")
	if !ok {
		return
	}
	favorite, err := s.library.IsFavorite(r.Context(), currentUser(r), songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{SongID: songID, Favorite: favorite})
}

// removeFavorite is idempotent; removing a song that is not a favorite
// still succeeds.
func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	songID, ok := parseIDParam(w, r, "songId")
	if !ok {
		return
	}
	if _, err := s.library.RemoveFavorite(r.Context(), currentUser(r), songID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
