// Package playback models a user's player: queue, current track, transport
// controls and volume. State transitions are pure; Session adds locking and
// side effects.
package playback

import "playdeck/shared/go/models"

const (
	DefaultVolume = 100
	MaxVolume     = 100
	noIndex       = -1
)

// State is a snapshot of one player. CurrentIndex is -1 when no queue slot
// is selected.
type State struct {
	Queue        []models.Song `json:"queue"`
	CurrentIndex int           `json:"currentIndex"`
	CurrentSong  *models.Song  `json:"currentSong"`
	IsPlaying    bool          `json:"isPlaying"`
	Volume       int           `json:"volume"`
	Progress     float64       `json:"progress"`
	Duration     float64       `json:"duration"`
}

// Initial returns the state of a fresh player.
func Initial() State {
	return State{
		Queue:        []models.Song{},
		CurrentIndex: noIndex,
		Volume:       DefaultVolume,
	}
}

// Empty reports whether nothing has been selected for playback.
func (s State) Empty() bool {
	return s.CurrentSong == nil
}

// Event is a transition applied by Reduce.
type Event interface {
	apply(State) State
}

// Reduce returns the state after ev. The input state is never modified and
// queue slices are never written in place, so snapshots may share them.
func Reduce(s State, ev Event) State {
	if ev == nil {
		return s
	}
	return ev.apply(s)
}

// PlaySong starts song, jumping to it when it is already queued and
// replacing the queue with it otherwise.
type PlaySong struct {
	Song models.Song
}

func (e PlaySong) apply(s State) State {
	index := noIndex
	if s.validIndex(s.CurrentIndex) && s.Queue[s.CurrentIndex].ID == e.Song.ID {
		index = s.CurrentIndex
	} else {
		for i, queued := range s.Queue {
			if queued.ID == e.Song.ID {
				index = i
				break
			}
		}
	}
	if index == noIndex {
		s.Queue = []models.Song{e.Song}
		index = 0
	}
	return s.selectSong(index, e.Song)
}

// SetQueue replaces the queue. The selection survives while its index is
// still inside the new queue.
type SetQueue struct {
	Songs []models.Song
}

func (e SetQueue) apply(s State) State {
	s.Queue = cloneSongs(e.Songs)
	if !s.validIndex(s.CurrentIndex) {
		s.CurrentIndex = noIndex
	}
	return s
}

// PlayQueue replaces the queue and starts the song at Index. An empty list
// or an out of range index leaves the state untouched.
type PlayQueue struct {
	Songs []models.Song
	Index int
}

func (e PlayQueue) apply(s State) State {
	if e.Index < 0 || e.Index >= len(e.Songs) {
		return s
	}
	s.Queue = cloneSongs(e.Songs)
	return s.selectSong(e.Index, s.Queue[e.Index])
}

// TogglePlay flips between playing and paused.
type TogglePlay struct{}

func (TogglePlay) apply(s State) State {
	if s.CurrentSong == nil {
		return s
	}
	s.IsPlaying = !s.IsPlaying
	return s
}

// PlayNext advances to the next queued song. It does not wrap.
type PlayNext struct{}

func (PlayNext) apply(s State) State {
	next := s.CurrentIndex + 1
	if s.CurrentIndex < 0 {
		next = 0
	}
	if !s.validIndex(next) {
		return s
	}
	return s.selectSong(next, s.Queue[next])
}

// PlayPrevious steps back to the previous queued song. It does not wrap.
type PlayPrevious struct{}

func (PlayPrevious) apply(s State) State {
	previous := s.CurrentIndex - 1
	if s.CurrentIndex < 0 || !s.validIndex(previous) {
		return s
	}
	return s.selectSong(previous, s.Queue[previous])
}

// SetVolume stores the volume as given; use ClampVolume on user input.
type SetVolume struct {
	Volume int
}

func (e SetVolume) apply(s State) State {
	s.Volume = e.Volume
	return s
}

// AddToQueue appends a song without changing the selection.
type AddToQueue struct {
	Song models.Song
}

func (e AddToQueue) apply(s State) State {
	queue := make([]models.Song, len(s.Queue), len(s.Queue)+1)
	copy(queue, s.Queue)
	s.Queue = append(queue, e.Song)
	return s
}

// SetProgress mirrors the audio clock.
type SetProgress struct {
	Progress float64
	Duration float64
}

func (e SetProgress) apply(s State) State {
	s.Progress = e.Progress
	s.Duration = e.Duration
	return s
}

// Reset returns the player to its initial state.
type Reset struct{}

func (Reset) apply(State) State {
	return Initial()
}

// ClampVolume limits volume to 0..MaxVolume.
func ClampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

func (s State) validIndex(index int) bool {
	return index >= 0 && index < len(s.Queue)
}

func (s State) selectSong(index int, song models.Song) State {
	s.CurrentIndex = index
	s.CurrentSong = &song
	s.IsPlaying = true
	s.Progress = 0
	s.Duration = 0
	return s
}

func cloneSongs(songs []models.Song) []models.Song {
	out := make([]models.Song, len(songs))
	copy(out, songs)
	return out
}
