package websocket

import (
	"encoding/json"
)

// Server -> client message types.
const (
	TypeTurn       = "turn"
	TypeVoiceState = "voice_state"
	TypeSpeak      = "speak"
	TypeStopSpeech = "stop_speech"
)

// Client -> server message types.
const (
	TypeSpeechEvent = "speech_event"
)

// Speech playback callbacks reported by the client.
const (
	SpeechStarted = "started"
	SpeechDone    = "done"
	SpeechError   = "error"
	SpeechStopped = "stopped"
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type SpeakPayload struct {
	RequestID string  `json:"request_id"`
	Text      string  `json:"text"`
	Language  string  `json:"language"`
	Rate      float64 `json:"rate"`
	Pitch     float64 `json:"pitch"`
}

type SpeechEventPayload struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

func encode(msgType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}
