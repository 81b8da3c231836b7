package conversation

import (
	"sync"
	"time"

	"kisansetu-be/pkg/llm"

	"github.com/google/uuid"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message in the visible exchange.
type Turn struct {
	ID        uuid.UUID `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTurn(speaker Speaker, text string) Turn {
	return Turn{
		ID:        uuid.New(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func UserTurn(text string) Turn      { return NewTurn(SpeakerUser, text) }
func AssistantTurn(text string) Turn { return NewTurn(SpeakerAssistant, text) }

// Session is the append-only, ordered turn log for one screen visit.
type Session struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewSession() *Session {
	return &Session{}
}

// Append adds a turn at the end and returns it as stored, with a missing ID or
// CreatedAt filled in. Turns are never edited or removed.
func (s *Session) Append(turn Turn) Turn {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
	return turn
}

// History returns a copy of all turns in insertion order.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Last returns the most recent turn, if any.
func (s *Session) Last() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// Messages maps turns onto provider chat messages.
func Messages(turns []Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Speaker == SpeakerAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Text})
	}
	return out
}
