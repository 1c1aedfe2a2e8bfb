package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OutboundMessage is the payload published to the send topic. The userId field
// carries the whole viewer object, which is what the chat backend consumes.
type OutboundMessage struct {
	UserID  User   `json:"userId"`
	Content string `json:"content"`
}

// InboundMessage is a validated frame received on the stream topic.
type InboundMessage struct {
	SenderID   ID
	SenderName string
	Content    string
}

type inboundSender struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// DecodeInbound parses a frame body. Frames come as {userId, content} or
// {id, content}; userId may be a scalar id or a {id, name} object.
func DecodeInbound(body []byte) (InboundMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if fields == nil {
		return InboundMessage{}, fmt.Errorf("%w: body is not an object", ErrMalformedFrame)
	}

	rawContent, ok := fields["content"]
	if !ok {
		return InboundMessage{}, fmt.Errorf("%w: missing content", ErrMalformedFrame)
	}
	var msg InboundMessage
	if err := json.Unmarshal(rawContent, &msg.Content); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: content is not a string", ErrMalformedFrame)
	}

	if raw, ok := fields["userId"]; ok && !isNull(raw) {
		if err := decodeSender(raw, &msg); err != nil {
			return InboundMessage{}, err
		}
	} else if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &msg.SenderID); err != nil {
			return InboundMessage{}, fmt.Errorf("%w: id: %v", ErrMalformedFrame, err)
		}
	}
	if msg.SenderName == "" {
		if raw, ok := fields["username"]; ok {
			// A non-string username is ignored; the label falls back to the id.
			var name string
			if err := json.Unmarshal(raw, &name); err == nil {
				msg.SenderName = name
			}
		}
	}
	return msg, nil
}

func decodeSender(raw json.RawMessage, msg *InboundMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var s inboundSender
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: userId: %v", ErrMalformedFrame, err)
		}
		msg.SenderID = s.ID
		msg.SenderName = s.Name
		if msg.SenderName == "" {
			msg.SenderName = s.Username
		}
		return nil
	}
	if err := json.Unmarshal(trimmed, &msg.SenderID); err != nil {
		return fmt.Errorf("%w: userId: %v", ErrMalformedFrame, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// EntryKind tells the renderer how to draw an entry.
type EntryKind int

const (
	EntryChat EntryKind = iota
	EntryJoinNotice
	EntryWarning
)

// Entry is one line of the chat list. Entries are never mutated after append.
type Entry struct {
	ID         string
	Kind       EntryKind
	Message    InboundMessage
	ReceivedAt time.Time
}
