package playback

import (
	"context"
	"sync"
)

// Registry holds one Session per user, created on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	recorder Recorder
	newAudio func() Audio
}

// NewRegistry creates a registry whose sessions record plays via recorder
// and report audio through a ReportedAudio.
func NewRegistry(recorder Recorder) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		recorder: recorder,
		newAudio: func() Audio { return NewReportedAudio() },
	}
}

// Session returns the user's session, creating it if needed.
func (r *Registry) Session(userID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		session = NewSession(userID, r.newAudio(), r.recorder)
		r.sessions[userID] = session
	}
	return session
}

// Close resets and forgets the user's session, as on logout.
func (r *Registry) Close(ctx context.Context, userID int64) {
	r.mu.Lock()
	session, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		session.Dispatch(ctx, Reset{})
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
