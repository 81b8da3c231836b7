package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"kisansetu-be/pkg/advisory"
)

// ModelReply is the closed set of reply shapes a backend can hand back.
// Only PlainText and StructuredText implement it.
type ModelReply interface {
	replyText() string
}

// PlainText is a reply that arrived as a bare string.
type PlainText string

func (p PlainText) replyText() string { return string(p) }

// StructuredText is a reply that arrived wrapped in an object.
type StructuredText struct {
	Text string `json:"text"`
}

func (s StructuredText) replyText() string { return s.Text }

// ReplyText returns the text carried by a reply, or false for a nil reply.
func ReplyText(r ModelReply) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.replyText(), true
}

// DecodeReply normalizes a raw backend payload. Accepted shapes are a JSON string,
// {"text": "..."} and {"response": "..."}.
func DecodeReply(raw json.RawMessage) (ModelReply, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("empty reply: %w", advisory.ErrMalformedModelOutput)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return PlainText(s), nil
	}

	var obj struct {
		Text     *string `json:"text"`
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode reply: %v: %w", err, advisory.ErrMalformedModelOutput)
	}
	switch {
	case obj.Text != nil:
		return StructuredText{Text: *obj.Text}, nil
	case obj.Response != nil:
		return StructuredText{Text: *obj.Response}, nil
	}
	return nil, fmt.Errorf("reply has no text field: %w", advisory.ErrMalformedModelOutput)
}
