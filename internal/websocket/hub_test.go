package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory/voice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func connect(t *testing.T, h *Hub, sessionID string) *Client {
	t.Helper()
	c := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 8)}
	h.register <- c
	require.Eventually(t, func() bool { return h.HasClients(sessionID) }, time.Second, time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Envelope{}
	}
}

func TestSendReachesOnlyThatSession(t *testing.T) {
	h := startHub(t)
	a1 := connect(t, h, "a")
	a2 := connect(t, h, "a")
	b := connect(t, h, "b")

	require.NoError(t, h.Send("a", TypeVoiceState, map[string]string{"state": "idle"}))

	assert.Equal(t, TypeVoiceState, receive(t, a1).Type)
	assert.Equal(t, TypeVoiceState, receive(t, a2).Type)
	assert.Len(t, b.Send, 0)
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "a")

	h.unregister <- c

	require.Eventually(t, func() bool { return !h.HasClients("a") }, time.Second, time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestSpeechRelayWaitsForDone(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "s")
	relay := NewSpeechRelay(h, "s")

	done := make(chan error, 1)
	go func() {
		done <- relay.Speak(context.Background(), "🌱 Water early", voice.DefaultSpeechOptions)
	}()

	env := receive(t, c)
	require.Equal(t, TypeSpeak, env.Type)
	var speak SpeakPayload
	require.NoError(t, json.Unmarshal(env.Data, &speak))
	assert.Equal(t, "en-IN", speak.Language)
	assert.Equal(t, 0.85, speak.Rate)

	started, _ := encode(TypeSpeechEvent, SpeechEventPayload{RequestID: speak.RequestID, Status: SpeechStarted})
	h.handleInbound(c, started)
	finished, _ := encode(TypeSpeechEvent, SpeechEventPayload{RequestID: speak.RequestID, Status: SpeechDone})
	h.handleInbound(c, finished)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Speak did not return")
	}
}

func TestSpeechRelayWithoutClientEndsAtOnce(t *testing.T) {
	h := startHub(t)
	err := NewSpeechRelay(h, "nobody").Speak(context.Background(), "hello", voice.DefaultSpeechOptions)
	assert.NoError(t, err)
}

func TestSpeechRelayTimeoutSendsStop(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "s")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewSpeechRelay(h, "s").Speak(ctx, "hello", voice.DefaultSpeechOptions)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, TypeSpeak, receive(t, c).Type)
	assert.Equal(t, TypeStopSpeech, receive(t, c).Type)
}

func TestMalformedInboundIgnored(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "s")
	assert.NotPanics(t, func() { h.handleInbound(c, []byte("{not json")) })
}

func TestSpeechEventFromOtherSessionIgnored(t *testing.T) {
	h := startHub(t)
	owner := connect(t, h, "s")
	other := connect(t, h, "intruder")
	relay := NewSpeechRelay(h, "s")

	done := make(chan error, 1)
	go func() {
		done <- relay.Speak(context.Background(), "hello", voice.DefaultSpeechOptions)
	}()

	var speak SpeakPayload
	require.NoError(t, json.Unmarshal(receive(t, owner).Data, &speak))

	forged, _ := encode(TypeSpeechEvent, SpeechEventPayload{RequestID: speak.RequestID, Status: SpeechDone})
	h.handleInbound(other, forged)

	select {
	case <-done:
		t.Fatal("Speak resolved by another session's client")
	case <-time.After(50 * time.Millisecond):
	}

	h.handleInbound(owner, forged)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Speak did not return")
	}
}

func TestReachableWithoutRedisIsLocal(t *testing.T) {
	h := startHub(t)
	assert.False(t, h.Reachable("s"))

	connect(t, h, "s")
	assert.True(t, h.Reachable("s"))
}
