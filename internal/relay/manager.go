package relay

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"morse-service/internal/models"
)

var (
	// ErrBadChannelID rejects identifiers that are not six digits.
	ErrBadChannelID = errors.New("channel ID must be a 6-digit number string")
	// ErrChannelFull rejects a third member.
	ErrChannelFull = errors.New("Channel is full")
)

// AlreadyActiveError rejects a user who already occupies a channel.
type AlreadyActiveError struct {
	Callsign string
}

func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("User '%s' is already in a channel", e.Callsign)
}

// Manager owns every live channel and the user→channel index. All access is
// serialized by its mutex; connection handlers call in from their own
// goroutines.
type Manager struct {
	mu           sync.Mutex
	channels     map[string]*Channel
	userChannels map[uuid.UUID]string
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{
		channels:     make(map[string]*Channel),
		userChannels: make(map[uuid.UUID]string),
	}
}

// Connect joins a member to the channel, creating it on first join.
// Fails when the identifier is malformed, the user is already active
// anywhere, or the channel is at capacity.
func (m *Manager) Connect(member *Member, channelID string) (*Channel, error) {
	if !models.ValidChannelID(channelID) {
		return nil, ErrBadChannelID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, active := m.userChannels[member.User.ID]; active {
		return nil, &AlreadyActiveError{Callsign: member.User.Callsign}
	}

	ch, ok := m.channels[channelID]
	if !ok {
		ch = newChannel(channelID)
		m.channels[channelID] = ch
	}

	if ch.IsFull() {
		return nil, ErrChannelFull
	}

	ch.add(member)
	m.userChannels[member.User.ID] = channelID
	return ch, nil
}

// Disconnect removes the member and deletes the channel once empty.
func (m *Manager) Disconnect(member *Member, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[channelID]
	if !ok {
		return
	}
	ch.remove(member)
	delete(m.userChannels, member.User.ID)
	if ch.UserCount() == 0 {
		delete(m.channels, channelID)
	}
}

// WaitingChannel picks a random channel with exactly one occupant, or ""
// when nobody is waiting.
func (m *Manager) WaitingChannel() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var waiting []string
	for id, ch := range m.channels {
		if ch.UserCount() == 1 {
			waiting = append(waiting, id)
		}
	}
	if len(waiting) == 0 {
		return ""
	}
	return waiting[rand.Intn(len(waiting))]
}

// NewChannelID generates a six-digit identifier not currently in use.
// This is the authoritative allocation; clients may generate their own ids
// and a collision there simply joins the existing channel.
func (m *Manager) NewChannelID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		id := models.NewChannelID()
		if _, taken := m.channels[id]; !taken {
			return id
		}
	}
}

// ChannelOf returns the identifier of the channel the user occupies, or "".
func (m *Manager) ChannelOf(userID uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userChannels[userID]
}

// Broadcast sends an event to every member of the channel, if it exists.
func (m *Manager) Broadcast(channelID string, event models.ChannelEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[channelID]; ok {
		ch.Broadcast(event)
	}
}

// Relay forwards a raw frame to the sender's partner, if any.
func (m *Manager) Relay(channelID string, raw []byte, sender *Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[channelID]; ok {
		ch.Relay(raw, sender)
	}
}

// Snapshot lists every live channel for the directory.
func (m *Manager) Snapshot() []models.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		out = append(out, ch.Snapshot())
	}
	return out
}
