package llm

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

const DefaultAudioMIMEType = "audio/m4a"

var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/m4a",
}

// AudioMIMEType maps a recording file name to the MIME type sent with inline audio.
func AudioMIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := audioMIMETypes[ext]; ok {
		return mime
	}
	return DefaultAudioMIMEType
}

// NewAudioInput encodes a captured clip for a multimodal request.
func NewAudioInput(filename string, data []byte) AudioInput {
	return AudioInput{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: AudioMIMEType(filename),
	}
}

// Bytes decodes the clip back to raw audio.
func (a AudioInput) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Base64)
}
