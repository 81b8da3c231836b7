package conversation

import (
	"fmt"
	"sync"
	"testing"

	"kisansetu-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendKeepsOrder(t *testing.T) {
	s := NewSession()
	s.Append(UserTurn("Which seed for black soil?"))
	s.Append(AssistantTurn("Cotton grows well in black soil."))

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, SpeakerUser, h[0].Speaker)
	assert.Equal(t, SpeakerAssistant, h[1].Speaker)
	assert.NotEqual(t, uuid.Nil, h[0].ID)
	assert.False(t, h[1].CreatedAt.Before(h[0].CreatedAt))
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewSession()
	s.Append(UserTurn("original"))

	h := s.History()
	h[0].Text = "mutated"

	assert.Equal(t, "original", s.History()[0].Text)
}

func TestAppendFillsMissingFields(t *testing.T) {
	s := NewSession()
	stored := s.Append(Turn{Speaker: SpeakerUser, Text: "hi"})

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, stored, last)
	assert.NotEqual(t, uuid.Nil, last.ID)
	assert.False(t, last.CreatedAt.IsZero())
}

func TestAppendReturnsStoredTurn(t *testing.T) {
	s := NewSession()
	turn := AssistantTurn("Mulch keeps soil moist.")

	stored := s.Append(turn)

	assert.Equal(t, turn, stored)
	assert.Equal(t, turn, s.History()[s.Len()-1])
}

func TestConcurrentAppend(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(UserTurn(fmt.Sprintf("q%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestMessages(t *testing.T) {
	msgs := Messages([]Turn{UserTurn("q"), AssistantTurn("a")})
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "q"},
		{Role: llm.RoleAssistant, Content: "a"},
	}, msgs)
}

func TestLastOnEmptySession(t *testing.T) {
	_, ok := NewSession().Last()
	assert.False(t, ok)
}
