package websocket

import (
	"context"
	"errors"
	"fmt"

	"kisansetu-be/pkg/advisory/voice"

	"github.com/google/uuid"
)

// SpeechRelay speaks through the session's connected client: the server sends a
// speak message and waits for the client's final speech_event.
type SpeechRelay struct {
	hub       *Hub
	sessionID string
}

func NewSpeechRelay(hub *Hub, sessionID string) *SpeechRelay {
	return &SpeechRelay{hub: hub, sessionID: sessionID}
}

var _ voice.Speaker = (*SpeechRelay)(nil)

// Speak returns at once when no instance holds a client of the session.
func (r *SpeechRelay) Speak(ctx context.Context, text string, opts voice.SpeechOptions) error {
	if !r.hub.Reachable(r.sessionID) {
		return nil
	}

	requestID := uuid.NewString()
	events, cancel := r.hub.awaitSpeech(r.sessionID, requestID)
	defer cancel()

	err := r.hub.Send(r.sessionID, TypeSpeak, SpeakPayload{
		RequestID: requestID,
		Text:      text,
		Language:  opts.Language,
		Rate:      opts.Rate,
		Pitch:     opts.Pitch,
	})
	if err != nil {
		return err
	}

	select {
	case ev := <-events:
		if ev.Status == SpeechError {
			return fmt.Errorf("client speech error: %s", ev.Message)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// Playback ran past its budget; make the client stop too.
			_ = r.Stop(context.Background())
		}
		return ctx.Err()
	}
}

func (r *SpeechRelay) Stop(ctx context.Context) error {
	return r.hub.Send(r.sessionID, TypeStopSpeech, struct{}{})
}
