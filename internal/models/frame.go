package models

// FrameTypeMorse tags a tap frame on the wire.
const FrameTypeMorse = "morse"

// Channel event names broadcast by the relay.
const (
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
)

// SignalFrame carries one tap symbol in either direction.
type SignalFrame struct {
	Type   string `json:"type"`
	Signal string `json:"signal"`
}

// ChannelEvent announces membership changes. ChannelID is set on user_joined
// so clients that asked for a random match learn the authoritative identifier.
type ChannelEvent struct {
	Event     string `json:"event"`
	User      User   `json:"user"`
	ChannelID string `json:"channel_id,omitempty"`
}
