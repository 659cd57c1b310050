package client

import (
	"context"

	"github.com/google/uuid"

	"morse-service/internal/models"
)

// Invitation is a locally tracked offer to meet a friend on a fresh channel.
// Only one can be outstanding at a time.
type Invitation struct {
	FriendID       uuid.UUID
	FriendCallsign string
	ChannelID      string
}

// Invite generates a private channel identifier for the friend and stores it
// as the pending invitation, replacing any previous one.
func (s *Session) Invite(friend models.User) Invitation {
	inv := Invitation{
		FriendID:       friend.ID,
		FriendCallsign: friend.Callsign,
		ChannelID:      models.NewChannelID(),
	}

	s.mu.Lock()
	s.pending = &inv
	s.mu.Unlock()

	return inv
}

// PendingInvitation returns a copy of the outstanding invitation, or nil.
// The slot empties on accept, decline, or any other successful connection.
func (s *Session) PendingInvitation() *Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	inv := *s.pending
	return &inv
}

// AcceptInvitation joins the invited channel and clears the pending slot.
func (s *Session) AcceptInvitation(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return s.fail("No pending invitation")
	}
	channelID := s.pending.ChannelID
	s.pending = nil
	s.mu.Unlock()

	return s.Join(ctx, channelID)
}

// DeclineInvitation clears the pending slot without connecting.
func (s *Session) DeclineInvitation() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}
