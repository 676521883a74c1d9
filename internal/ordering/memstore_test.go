package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"playdeck/shared/go/models"
)

// memStore is an in-memory Store and Catalog. RunAtomic serializes units
// behind one mutex and works on a copy that is only kept on success.
type memStore struct {
	mu        sync.Mutex
	owners    map[int64]int64
	entries   map[int64][]models.PlaylistEntry
	songs     map[int64]models.Song
	nextID    int64
	shiftErr  error
	skipShift bool
}

func newMemStore() *memStore {
	return &memStore{
		owners:  make(map[int64]int64),
		entries: make(map[int64][]models.PlaylistEntry),
		songs:   make(map[int64]models.Song),
	}
}

func (m *memStore) addPlaylist(id, ownerID int64) {
	m.owners[id] = ownerID
}

func (m *memStore) addSong(song models.Song) {
	if song.SourceType == "" {
		song.SourceType = models.SourceExternal
	}
	m.songs[song.ID] = song
}

func (m *memStore) GetSong(_ context.Context, id int64) (models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	song, ok := m.songs[id]
	if !ok {
		return models.Song{}, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return song, nil
}

func (m *memStore) RunAtomic(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := make(map[int64][]models.PlaylistEntry, len(m.entries))
	for id, entries := range m.entries {
		working[id] = append([]models.PlaylistEntry(nil), entries...)
	}
	tx := &memTx{store: m, entries: working, nextID: m.nextID}
	if err := fn(tx); err != nil {
		return err
	}
	m.entries = tx.entries
	m.nextID = tx.nextID
	return nil
}

func (m *memStore) PlaylistOwned(_ context.Context, ownerID, playlistID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[playlistID]
	return ok && owner == ownerID, nil
}

func (m *memStore) ListEntries(_ context.Context, playlistID int64, limit, offset int) ([]models.EntryDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := sortedEntries(m.entries[playlistID])
	if offset >= len(entries) {
		return []models.EntryDetail{}, nil
	}
	entries = entries[offset:]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	details := make([]models.EntryDetail, 0, len(entries))
	for _, entry := range entries {
		details = append(details, models.EntryDetail{
			ID:       entry.ID,
			Position: entry.Position,
			AddedAt:  entry.AddedAt,
			Song:     m.songs[entry.SongID],
		})
	}
	return details, nil
}

// order returns the committed song ids in position order.
func (m *memStore) order(playlistID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, entry := range sortedEntries(m.entries[playlistID]) {
		ids = append(ids, entry.SongID)
	}
	return ids
}

func (m *memStore) positions(playlistID int64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var positions []int
	for _, entry := range sortedEntries(m.entries[playlistID]) {
		positions = append(positions, entry.Position)
	}
	return positions
}

type memTx struct {
	store   *memStore
	entries map[int64][]models.PlaylistEntry
	nextID  int64
}

func (t *memTx) LockPlaylist(_ context.Context, ownerID, playlistID int64) (bool, error) {
	owner, ok := t.store.owners[playlistID]
	return ok && owner == ownerID, nil
}

func (t *memTx) SelectEntries(_ context.Context, playlistID int64) ([]models.PlaylistEntry, error) {
	return sortedEntries(t.entries[playlistID]), nil
}

func (t *memTx) InsertEntry(_ context.Context, entry models.PlaylistEntry) (models.PlaylistEntry, error) {
	t.nextID++
	entry.ID = t.nextID
	t.entries[entry.PlaylistID] = append(t.entries[entry.PlaylistID], entry)
	return entry, nil
}

func (t *memTx) DeleteEntry(_ context.Context, playlistID, songID int64) (models.PlaylistEntry, error) {
	entries := t.entries[playlistID]
	for i, entry := range entries {
		if entry.SongID == songID {
			t.entries[playlistID] = append(entries[:i:i], entries[i+1:]...)
			return entry, nil
		}
	}
	return models.PlaylistEntry{}, errors.New("no rows in result set")
}

func (t *memTx) ShiftPositions(_ context.Context, playlistID int64, fromPosition, delta int) error {
	if t.store.shiftErr != nil {
		return t.store.shiftErr
	}
	if t.store.skipShift {
		return nil
	}
	entries := t.entries[playlistID]
	for i := range entries {
		if entries[i].Position >= fromPosition {
			entries[i].Position += delta
		}
	}
	return nil
}

func sortedEntries(entries []models.PlaylistEntry) []models.PlaylistEntry {
	out := append([]models.PlaylistEntry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
