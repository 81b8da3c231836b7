package dto

import (
	"kisansetu-be/pkg/advisory/voice"
)

type StartRecordingRequest struct {
	MicrophoneGranted bool `json:"microphone_granted"`
}

type VoiceStateResponse struct {
	SessionID string      `json:"session_id"`
	State     voice.State `json:"state"`
}

type VoiceAnswerResponse struct {
	State     voice.State   `json:"state"`
	Answer    *voice.Answer `json:"answer,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
}
