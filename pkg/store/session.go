package store

import (
	"sync"
	"sync/atomic"
	"time"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/soil"
	"kisansetu-be/pkg/advisory/voice"
)

// Session is the server-side state of one advisory screen visit.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Conversation *conversation.Session `json:"-"`

	// Voice is attached lazily by the voice service together with its recorder.
	Voice    *voice.Pipeline       `json:"-"`
	Recorder *voice.BufferRecorder `json:"-"`

	mu       sync.RWMutex
	coords   *advisory.Coordinates
	profile  *soil.Profile
	inflight atomic.Int32
}

func NewSession(id, userID string) *Session {
	return &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    time.Now(),
		Conversation: conversation.NewSession(),
	}
}

// Coordinates returns the location resolved earlier in this session, if any.
func (s *Session) Coordinates() (advisory.Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coords == nil {
		return advisory.Coordinates{}, false
	}
	return *s.coords, true
}

func (s *Session) SetCoordinates(c advisory.Coordinates) {
	s.mu.Lock()
	s.coords = &c
	// A new location invalidates the cached soil.
	s.profile = nil
	s.mu.Unlock()
}

// SoilProfile returns the cached soil profile, if any.
func (s *Session) SoilProfile() (soil.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return soil.Profile{}, false
	}
	return *s.profile, true
}

func (s *Session) SetSoilProfile(p soil.Profile) {
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
}

// BeginAsk marks a text question as in flight and returns how many others already are.
func (s *Session) BeginAsk() int {
	return int(s.inflight.Add(1)) - 1
}

func (s *Session) EndAsk() {
	s.inflight.Add(-1)
}

// Close releases the voice pipeline's audio session.
func (s *Session) Close() {
	s.mu.Lock()
	v := s.Voice
	s.mu.Unlock()
	if v != nil {
		v.Close()
	}
}

// AttachVoice sets the pipeline once and returns whichever pipeline is attached.
func (s *Session) AttachVoice(build func() (*voice.Pipeline, *voice.BufferRecorder)) *voice.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Voice == nil {
		s.Voice, s.Recorder = build()
	}
	return s.Voice
}
