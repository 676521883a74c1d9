package playback

import (
	"context"
	"sync"

	"playdeck/shared/go/logging"
	"playdeck/shared/go/models"
)

// Audio is the backend that actually renders sound.
type Audio interface {
	SetVolume(volume int)
	Progress() float64
	Duration() float64
}

// Recorder stores started plays in the user's recent history.
type Recorder interface {
	RecordPlay(ctx context.Context, userID int64, song models.Song) error
}

// ReportedAudio is the server-side Audio for clients that render sound
// themselves and report the clock back.
type ReportedAudio struct {
	mu       sync.Mutex
	volume   int
	progress float64
	duration float64
}

// NewReportedAudio returns a ReportedAudio at the default volume.
func NewReportedAudio() *ReportedAudio {
	return &ReportedAudio{volume: DefaultVolume}
}

func (a *ReportedAudio) SetVolume(volume int) {
	a.mu.Lock()
	a.volume = volume
	a.mu.Unlock()
}

// Volume returns the last volume forwarded by the session.
func (a *ReportedAudio) Volume() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *ReportedAudio) Progress() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

func (a *ReportedAudio) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Report records the client's playback clock.
func (a *ReportedAudio) Report(progress, duration float64) {
	a.mu.Lock()
	a.progress = progress
	a.duration = duration
	a.mu.Unlock()
}

// Session is one user's player. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	userID   int64
	state    State
	audio    Audio
	recorder Recorder
}

// NewSession creates a session in the initial state. audio and recorder may
// be nil.
func NewSession(userID int64, audio Audio, recorder Recorder) *Session {
	return &Session{
		userID:   userID,
		state:    Initial(),
		audio:    audio,
		recorder: recorder,
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and returns the resulting state. Volume changes are
// forwarded to the audio backend and started songs are recorded as played.
// Recording failures are logged, never returned.
func (s *Session) Dispatch(ctx context.Context, ev Event) State {
	s.mu.Lock()
	previous := s.state
	next := Reduce(previous, ev)
	s.state = next
	if s.audio != nil && next.Volume != previous.Volume {
		s.audio.SetVolume(next.Volume)
	}
	s.mu.Unlock()

	if song, ok := startedSong(ev); ok && s.recorder != nil {
		if err := s.recorder.RecordPlay(ctx, s.userID, song); err != nil {
			logging.FromContext(ctx).Warn().
				Err(err).
				Int64("song_id", song.ID).
				Msg("failed to record recently played song")
		}
	}

	return next
}

// ReportProgress feeds a client clock report through the audio backend and
// mirrors it into the state.
func (s *Session) ReportProgress(ctx context.Context, progress, duration float64) State {
	if reporter, ok := s.audio.(interface{ Report(float64, float64) }); ok {
		reporter.Report(progress, duration)
	}
	return s.Sync(ctx)
}

// Sync copies the audio backend's clock into the state.
func (s *Session) Sync(ctx context.Context) State {
	if s.audio == nil {
		return s.State()
	}
	return s.Dispatch(ctx, SetProgress{Progress: s.audio.Progress(), Duration: s.audio.Duration()})
}

func startedSong(ev Event) (models.Song, bool) {
	switch e := ev.(type) {
	case PlaySong:
		return e.Song, true
	case PlayQueue:
		if e.Index >= 0 && e.Index < len(e.Songs) {
			return e.Songs[e.Index], true
		}
	}
	return models.Song{}, false
}
