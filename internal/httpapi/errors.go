package httpapi

import (
	"net/http"

	"playdeck/internal/musicapi"
	"playdeck/internal/ordering"
	"playdeck/internal/store"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order before falling back to the ordering
// kinds, so more specific sentinels come first.
var errorMappings = []errorMapping{
	{store.ErrUserExists, http.StatusConflict, "USER_EXISTS"},
	{store.ErrInvalidUser, http.StatusBadRequest, "INVALID_USER"},
	{store.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{store.ErrUserNotFound, http.StatusNotFound, ordering.KindNotFound},
	{store.ErrInvalidSong, http.StatusBadRequest, "INVALID_SONG"},
	{store.ErrInvalidPlaylist, http.StatusBadRequest, "INVALID_PLAYLIST"},
	{store.ErrInvalidSort, http.StatusBadRequest, "INVALID_SORT"},
	{musicapi.ErrNotConfigured, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE"},
}

var kindStatus = map[string]int{
	ordering.KindNotFound:           http.StatusNotFound,
	ordering.KindDuplicate:          http.StatusConflict,
	ordering.KindInvalidPosition:    http.StatusBadRequest,
	ordering.KindInvariantViolation: http.StatusInternalServerError,
	ordering.KindStorageFailure:     http.StatusInternalServerError,
}
