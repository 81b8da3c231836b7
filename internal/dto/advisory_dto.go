package dto

import (
	"time"

	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/soil"
)

// Error codes carried next to an apology answer.
const (
	ErrorCodeNoLocation        = "no_location_available"
	ErrorCodeInference         = "inference_unavailable"
	ErrorCodeProcessingTimeout = "processing_timeout"
)

// DeviceReport is what the client knows about its device for one request.
type DeviceReport struct {
	LocationGranted bool     `json:"location_granted"`
	Latitude        *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	FixError        string   `json:"fix_error,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type AskRequest struct {
	Question string       `json:"question" validate:"required,max=4000"`
	Device   DeviceReport `json:"device"`
}

type AskResponse struct {
	Question conversation.Turn `json:"question"`
	Answer   conversation.Turn `json:"answer"`
	Soil     *soil.Profile     `json:"soil,omitempty"`
	// ErrorCode names the failure an apology answer stands in for.
	ErrorCode string `json:"error_code,omitempty"`
}

type HistoryResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []conversation.Turn `json:"turns"`
}
