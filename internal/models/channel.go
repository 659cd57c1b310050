package models

import (
	"math/rand"
	"regexp"
	"strconv"
	"time"
)

// ChannelIDLength is the number of decimal digits in a channel identifier.
const ChannelIDLength = 6

var channelIDPattern = regexp.MustCompile(`^\d{6}$`)

// Channel is the public view of an active channel: its identifier, the users
// occupying it ordered by join time, and whether it can take another member.
type Channel struct {
	ChannelID string    `json:"channel_id"`
	Users     []User    `json:"users"`
	IsFull    bool      `json:"is_full"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelList is the wire shape of GET /channel/list.
type ChannelList struct {
	Channels []Channel `json:"channels"`
	Count    int       `json:"count"`
}

// ValidChannelID reports whether id is exactly six ASCII digits.
func ValidChannelID(id string) bool {
	return channelIDPattern.MatchString(id)
}

// NewChannelID returns a uniformly random six-digit channel identifier.
// Uniqueness against live channels is the relay's job, not the caller's.
func NewChannelID() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
