package events

import "time"

const (
	TypeProfileRegistered = "profile.registered"
	TypeAdvisoryAnswered  = "advisory.answered"
	TypeVoiceTurnFinished = "advisory.voice_turn"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the dotted subject suffix, e.g. "profile.registered".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

// ProfileRegistered is emitted after a farmer profile is stored.
func ProfileRegistered(profileID string, lat, lng *float64) BaseEvent {
	data := map[string]interface{}{"profile_id": profileID}
	if lat != nil && lng != nil {
		data["latitude"] = *lat
		data["longitude"] = *lng
	}
	return New(TypeProfileRegistered, data)
}

// AdvisoryAnswered is emitted after a text question was answered.
func AdvisoryAnswered(sessionID, soilSource string, degraded bool) BaseEvent {
	return New(TypeAdvisoryAnswered, map[string]interface{}{
		"session_id":  sessionID,
		"soil_source": soilSource,
		"degraded":    degraded,
	})
}

// VoiceTurnFinished is emitted after a spoken question was answered or apologised for.
func VoiceTurnFinished(sessionID string, failed bool) BaseEvent {
	return New(TypeVoiceTurnFinished, map[string]interface{}{
		"session_id": sessionID,
		"failed":     failed,
	})
}
