// Package relay keeps the in-memory registry of live channels and moves
// frames between the two members of each one.
package relay

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"morse-service/internal/models"
)

// MaxMembers is the hard channel capacity.
const MaxMembers = 2

// Member is one connected operator inside a channel.
type Member struct {
	User models.User
	Conn *websocket.Conn
}

// Channel pairs at most two members under a six-digit identifier. Channels
// exist only while occupied; the Manager drops them at zero members. Methods
// are not safe for concurrent use on their own, the Manager serializes access.
type Channel struct {
	ID        string
	CreatedAt time.Time
	members   []*Member
}

func newChannel(id string) *Channel {
	return &Channel{ID: id, CreatedAt: time.Now().UTC()}
}

// UserCount returns the current number of members.
func (c *Channel) UserCount() int {
	return len(c.members)
}

// IsFull reports whether the channel is at capacity.
func (c *Channel) IsFull() bool {
	return len(c.members) == MaxMembers
}

func (c *Channel) add(m *Member) {
	c.members = append(c.members, m)
}

func (c *Channel) remove(m *Member) {
	for i, existing := range c.members {
		if existing == m {
			c.members = append(c.members[:i], c.members[i+1:]...)
			return
		}
	}
}

func (c *Channel) other(sender *Member) *Member {
	for _, m := range c.members {
		if m != sender {
			return m
		}
	}
	return nil
}

// Broadcast sends an event to every member, skipping failed writes.
func (c *Channel) Broadcast(event models.ChannelEvent) {
	payload, _ := json.Marshal(event)
	for _, m := range c.members {
		if err := m.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("channel %s: broadcast to %s failed: %v", c.ID, m.User.Callsign, err)
		}
	}
}

// Relay forwards a raw frame from sender to the other member. Well-formed
// JSON is forwarded as JSON; anything else goes out verbatim as text so that
// legacy keyers that send bare signal characters keep working. Alone in the
// channel, the frame is dropped.
func (c *Channel) Relay(raw []byte, sender *Member) {
	dest := c.other(sender)
	if dest == nil {
		return
	}

	if !json.Valid(raw) {
		log.Printf("channel %s: relaying legacy text frame", c.ID)
	}
	if err := dest.Conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Printf("channel %s: relay to %s failed: %v", c.ID, dest.User.Callsign, err)
	}
}

// Snapshot returns the public view of the channel. Statuses reflect
// occupancy: waiting while alone, busy when paired.
func (c *Channel) Snapshot() models.Channel {
	status := models.StatusWaiting
	if c.IsFull() {
		status = models.StatusBusy
	}

	users := make([]models.User, 0, len(c.members))
	for _, m := range c.members {
		u := m.User
		u.Status = status
		users = append(users, u)
	}
	return models.Channel{
		ChannelID: c.ID,
		Users:     users,
		IsFull:    c.IsFull(),
		CreatedAt: c.CreatedAt,
	}
}
