package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID identifies a user or streamer. The platform emits both numeric and string
// ids, so ID keeps the textual form and restores a JSON number when it can.
type ID string

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON encodes canonical integers as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

// maxExactFloat is the largest integer a float64 holds exactly.
const maxExactFloat = 1 << 53

// canonicalNumber writes integral numbers such as 2.0 or 2e3 in plain integer
// form so they compare equal to the same id sent as 2.
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

// User is the viewer running the client.
type User struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Streamer is the broadcaster whose room the viewer joined.
type Streamer struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Identity is the pair loaded once per mount.
type Identity struct {
	User     User     `json:"user"`
	Streamer Streamer `json:"streamer"`
}

// Validate checks that both ids are present; the streamer id names the topics.
func (i Identity) Validate() error {
	if i.User.ID.IsZero() {
		return fmt.Errorf("%w: missing user id", ErrIdentityUnavailable)
	}
	if i.Streamer.ID.IsZero() {
		return fmt.Errorf("%w: missing streamer id", ErrIdentityUnavailable)
	}
	return nil
}

// SenderRole classifies the author of a chat line.
type SenderRole int

const (
	RoleUnknown SenderRole = iota
	RoleStreamer
	RoleViewer
)

func (r SenderRole) String() string {
	switch r {
	case RoleStreamer:
		return "streamer"
	case RoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// RoleOf compares a sender id against the streamer and the viewer.
func (i Identity) RoleOf(sender ID) SenderRole {
	switch {
	case sender.IsZero():
		return RoleUnknown
	case sender == i.Streamer.ID:
		return RoleStreamer
	case sender == i.User.ID:
		return RoleViewer
	default:
		return RoleUnknown
	}
}
