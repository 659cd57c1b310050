package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"morse-service/internal/models"
)

// Human-readable joinability verdicts, shown to the operator as-is.
const (
	ReasonWillBeCreated = "Channel will be created"
	ReasonChannelFull   = "Channel is full"
	ReasonAtCapacity    = "Channel has reached maximum capacity"
	ReasonFriendNowhere = "Friend is not in any channel"
)

// JoinCheck is the result of a joinability pre-flight.
type JoinCheck struct {
	Allowed bool
	Reason  string
	Channel *models.Channel
}

// Directory runs read-only queries against the channel directory. It never
// mutates anything; joining happens over the websocket transport.
type Directory struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewDirectory builds a Directory for the given REST base URL and bearer token.
func NewDirectory(baseURL, token string) *Directory {
	return &Directory{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ListChannels fetches every active channel.
func (d *Directory) ListChannels(ctx context.Context) ([]models.Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/channel/list", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list channels: status %d", resp.StatusCode)
	}

	var list models.ChannelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return list.Channels, nil
}

// ChannelOf returns the first channel occupied by the user, or nil.
func (d *Directory) ChannelOf(ctx context.Context, userID uuid.UUID) (*models.Channel, error) {
	channels, err := d.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		for _, u := range channels[i].Users {
			if u.ID == userID {
				return &channels[i], nil
			}
		}
	}
	return nil, nil
}

// CanJoin checks whether the channel can take another member. A channel that
// does not exist yet is joinable (it is created on connect). The full flag
// and the occupant count are independent checks; either one blocks the join.
func (d *Directory) CanJoin(ctx context.Context, channelID string) (JoinCheck, error) {
	channels, err := d.ListChannels(ctx)
	if err != nil {
		return JoinCheck{}, err
	}

	var found *models.Channel
	for i := range channels {
		if channels[i].ChannelID == channelID {
			found = &channels[i]
			break
		}
	}

	if found == nil {
		return JoinCheck{Allowed: true, Reason: ReasonWillBeCreated}, nil
	}
	if found.IsFull {
		return JoinCheck{Allowed: false, Reason: ReasonChannelFull, Channel: found}, nil
	}
	if len(found.Users) >= 2 {
		return JoinCheck{Allowed: false, Reason: ReasonAtCapacity, Channel: found}, nil
	}
	return JoinCheck{Allowed: true, Channel: found}, nil
}

// FriendJoinableChannel locates the friend's current channel and checks
// whether there is room to join them.
func (d *Directory) FriendJoinableChannel(ctx context.Context, friendID uuid.UUID) (JoinCheck, error) {
	channel, err := d.ChannelOf(ctx, friendID)
	if err != nil {
		return JoinCheck{}, err
	}
	if channel == nil {
		return JoinCheck{Allowed: false, Reason: ReasonFriendNowhere}, nil
	}
	return d.CanJoin(ctx, channel.ChannelID)
}
