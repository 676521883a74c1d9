package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"playdeck/internal/playback"
)

type playRequest struct {
	SongID int64 `json:"songId"`
}

type volumeRequest struct {
	Volume *int `json:"volume"`
}

type progressRequest struct {
	Progress float64 `json:"progress"`
	Duration float64 `json:"duration"`
}

type queueRequest struct {
	SongIDs []int64 `json:"songIds"`
	Index   *int    `json:"index"`
}

type playPlaylistRequest struct {
	Index int `json:"index"`
}

func writeState(w http.ResponseWriter, r *http.Request, state playback.State, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) playerState(w http.ResponseWriter, r *http.Request) {
	state, err := s.player.State(r.Context(), currentUser(r))
	writeState(w, r, state, err)
}

func (s *Server) playerPlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SongID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "songId is required", Code: "BAD_REQUEST"})
		return
	}
	state, err := s.player.Play(r.Context(), currentUser(r), req.SongID)
	writeState(w, r, state, err)
}

func (s *Server) playerToggle(w http.ResponseWriter, r *http.Request) {
	state, err := s.player.Toggle(r.Context(), currentUser(r))
	writeState(w, r, state, err)
}

func (s *Server) playerNext(w http.ResponseWriter, r *http.Request) {
	state, err := s.player.Next(r.Context(), currentUser(r))
	writeState(w, r, state, err)
}

func (s *Server) playerPrevious(w http.ResponseWriter, r *http.Request) {
	state, err := s.player.Previous(r.Context(), currentUser(r))
	writeState(w, r, state, err)
}

func (s *Server) playerVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Volume == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "volume is required", Code: "BAD_REQUEST"})
		return
	}
	state, err := s.player.SetVolume(r.Context(), currentUser(r), *req.Volume)
	writeState(w, r, state, err)
}

func (s *Server) playerProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Progress < 0 || req.Duration < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "progress and duration must not be negative", Code: "BAD_REQUEST"})
		return
	}
	state, err := s.player.ReportProgress(r.Context(), currentUser(r), req.Progress, req.Duration)
	writeState(w, r, state, err)
}

func (s *Server) playerQueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.player.SetQueue(r.Context(), currentUser(r), req.SongIDs, req.Index)
	writeState(w, r, state, err)
}

func (s *Server) playerAddToQueue(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SongID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "songId is required", Code: "BAD_REQUEST"})
		return
	}
	state, err := s.player.AddToQueue(r.Context(), currentUser(r), req.SongID)
	writeState(w, r, state, err)
}

// playerPlayPlaylist accepts an empty body, which starts at the first song.
func (s *Server) playerPlayPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var req playPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload", Code: "BAD_REQUEST"})
		return
	}
	state, err := s.player.PlayPlaylist(r.Context(), currentUser(r), playlistID, req.Index)
	writeState(w, r, state, err)
}
