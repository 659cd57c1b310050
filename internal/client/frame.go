// Package client implements the operator-side core of the morse channel
// protocol: the websocket transport, the per-session state machine, the
// directory queries used before joining, and invitation tracking.
package client

import (
	"encoding/json"

	"morse-service/internal/models"
)

type decodedKind int

const (
	// decodedIgnored is structured data this client does not act on.
	decodedIgnored decodedKind = iota
	decodedJoined
	decodedLeft
	decodedSignal
	// decodedLegacy is a frame that failed structured decoding and is
	// treated as a raw signal for backward compatibility.
	decodedLegacy
)

// decoded is the discriminated result of decoding one inbound frame.
type decoded struct {
	kind   decodedKind
	event  models.ChannelEvent
	signal string
}

// wireFrame is the union of every inbound frame shape.
type wireFrame struct {
	Event     string       `json:"event"`
	User      *models.User `json:"user"`
	ChannelID string       `json:"channel_id"`
	Type      string       `json:"type"`
	Signal    string       `json:"signal"`
}

// decodeFrame classifies an inbound frame. Anything that is not a JSON
// object falls back to the legacy plain-text signal path; well-formed JSON
// of an unknown shape is ignored.
func decodeFrame(raw []byte) decoded {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return decoded{kind: decodedLegacy, signal: string(raw)}
	}

	switch {
	case frame.Event == models.EventUserJoined && frame.User != nil:
		return decoded{kind: decodedJoined, event: models.ChannelEvent{
			Event:     frame.Event,
			User:      *frame.User,
			ChannelID: frame.ChannelID,
		}}
	case frame.Event == models.EventUserLeft && frame.User != nil:
		return decoded{kind: decodedLeft, event: models.ChannelEvent{
			Event: frame.Event,
			User:  *frame.User,
		}}
	case frame.Type == models.FrameTypeMorse:
		return decoded{kind: decodedSignal, signal: frame.Signal}
	default:
		return decoded{kind: decodedIgnored}
	}
}
