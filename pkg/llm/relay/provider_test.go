package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayAcceptsEveryReplyShape(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string", body: `"Use drip irrigation."`, want: "Use drip irrigation."},
		{name: "text", body: `{"text":"Mulch the beds."}`, want: "Mulch the beds."},
		{name: "response", body: `{"response":"Test soil pH."}`, want: "Test soil pH."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			out, err := NewRelayProvider(srv.URL, "").Generate(context.Background(), "question")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRelayAudioPayload(t *testing.T) {
	var got relayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"text":"Irrigate in the evening."}`))
	}))
	defer srv.Close()

	audio := llm.NewAudioInput("q.wav", []byte("RIFF"))
	reply, err := NewRelayProvider(srv.URL, "secret").GenerateFromAudio(context.Background(), "Answer the farmer", audio)

	require.NoError(t, err)
	assert.Equal(t, llm.StructuredText{Text: "Irrigate in the evening."}, reply)
	require.NotNil(t, got.Audio)
	assert.Equal(t, "audio/wav", got.Audio.MIMEType)
	assert.Equal(t, audio.Base64, got.Audio.Data)
	assert.Equal(t, "Answer the farmer", got.Prompt)
}

func TestRelayMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"?"}`))
	}))
	defer srv.Close()

	_, err := NewRelayProvider(srv.URL, "").Generate(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, advisory.ErrInferenceUnavailable))
	assert.True(t, errors.Is(err, advisory.ErrMalformedModelOutput))
}
