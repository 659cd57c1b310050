package client

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"morse-service/internal/auth"
	"morse-service/internal/handlers"
	"morse-service/internal/mocks"
	"morse-service/internal/models"
	"morse-service/internal/morse"
	"morse-service/internal/relay"
	"morse-service/internal/ws"
)

const testSecret = "session-test-secret"

type testService struct {
	baseURL  string
	verifier *auth.Verifier
	users    *mocks.UserRepositoryMock
}

func startService(t *testing.T) *testService {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := relay.NewManager()
	verifier := auth.NewVerifier(testSecret)
	users := new(mocks.UserRepositoryMock)

	wsHandler := ws.NewChannelWebSocketHandler(manager, verifier, users)
	channelHandler := handlers.NewChannelHandler(manager)

	r := gin.New()
	r.GET("/channel/list", channelHandler.ListChannels)
	r.GET("/channel/random", wsHandler.HandleRandom)
	r.GET("/channel/:channel_id", wsHandler.HandleJoin)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testService{baseURL: srv.URL, verifier: verifier, users: users}
}

func (ts *testService) session(t *testing.T, callsign string) *Session {
	t.Helper()
	user := models.User{ID: uuid.New(), Callsign: callsign}
	ts.users.On("GetUser", mock.Anything, user.ID).Return(user, nil)

	token, err := ts.verifier.Mint(user.ID, time.Hour)
	require.NoError(t, err)

	s := NewSession(Config{
		BaseURL:    ts.baseURL,
		Token:      token,
		User:       user,
		BlankDelay: morse.MinBlankDelay,
	})
	t.Cleanup(s.Close)
	return s
}

func waitEvent[T Event](t *testing.T, events <-chan Event) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if typed, ok := e.(T); ok {
				return typed
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestCreateHostsFreshChannel(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")

	require.NoError(t, host.Create(context.Background()))

	assert.Equal(t, StateConnected, host.State())
	channelID := host.ChannelID()
	assert.True(t, models.ValidChannelID(channelID))
	assert.Equal(t,
		fmt.Sprintf("Hosting channel %s - Waiting for someone to join...", channelID),
		host.Status())

	opened := waitEvent[OpenedEvent](t, host.Events())
	assert.Equal(t, channelID, opened.ChannelID)
	assert.Nil(t, host.Partner())
}

func TestJoinPairsWithHost(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")

	require.NoError(t, host.Create(context.Background()))
	require.NoError(t, guest.Join(context.Background(), host.ChannelID()))

	joined := waitEvent[PartnerJoinedEvent](t, host.Events())
	assert.Equal(t, "W2DEF", joined.User.Callsign)
	assert.Equal(t, host.ChannelID(), joined.ChannelID)
	assert.Equal(t, "Connected with W2DEF", host.Status())
	require.NotNil(t, host.Partner())
	assert.Equal(t, "W2DEF", host.Partner().Callsign)

	assert.Equal(t, host.ChannelID(), guest.ChannelID())
}

func TestJoinRandomFindsWaitingChannel(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")

	require.NoError(t, host.Create(context.Background()))
	require.NoError(t, guest.JoinRandom(context.Background()))

	// The relay reveals the identifier with the guest's own join event.
	waitEvent[PartnerJoinedEvent](t, host.Events())
	require.Eventually(t, func() bool {
		return guest.ChannelID() == host.ChannelID()
	}, 3*time.Second, 10*time.Millisecond)
}

func TestTapReachesPartner(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")

	require.NoError(t, host.Create(context.Background()))
	require.NoError(t, guest.Join(context.Background(), host.ChannelID()))
	waitEvent[PartnerJoinedEvent](t, host.Events())

	signal, sent := host.Tap(100 * time.Millisecond)
	require.True(t, sent)
	assert.Equal(t, morse.Dot, signal)

	remote := waitEvent[SignalEvent](t, guest.Events())
	assert.Equal(t, morse.Dot, remote.Signal)
	assert.False(t, remote.Local)
	assert.Contains(t, guest.Transcript().String(), string(morse.Dot))

	// The trailing space follows after the configured blank delay.
	space := waitEvent[SignalEvent](t, guest.Events())
	assert.Equal(t, morse.Space, space.Signal)
}

func TestPressTimingSelectsSymbol(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")

	require.NoError(t, host.Create(context.Background()))
	require.NoError(t, guest.Join(context.Background(), host.ChannelID()))
	waitEvent[PartnerJoinedEvent](t, host.Events())

	signal, sent := host.Tap(morse.DashThreshold)
	require.True(t, sent)
	assert.Equal(t, morse.Dash, signal)
}

func TestDisconnectNotifiesPartner(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")

	require.NoError(t, host.Create(context.Background()))
	channelID := host.ChannelID()
	require.NoError(t, guest.Join(context.Background(), channelID))
	waitEvent[PartnerJoinedEvent](t, host.Events())

	guest.Disconnect()

	left := waitEvent[PartnerLeftEvent](t, host.Events())
	assert.Equal(t, "W2DEF", left.User.Callsign)
	assert.Equal(t, "Partner disconnected", host.Status())
	assert.Nil(t, host.Partner())
	assert.Equal(t, StateConnected, host.State())

	closed := waitEvent[ClosedEvent](t, guest.Events())
	assert.Equal(t, "Disconnected", closed.Status)
	assert.Equal(t, StateIdle, guest.State())
	// An identifier-bound join keeps the channel for a later rejoin.
	assert.Equal(t, channelID, guest.ChannelID())
}

func TestJoinRejectsMalformedID(t *testing.T) {
	svc := startService(t)
	s := svc.session(t, "K1ABC")

	err := s.Join(context.Background(), "12345")
	require.EqualError(t, err, "Channel ID must be a 6-digit number")
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "Channel ID must be a 6-digit number", s.Status())
}

func TestJoinRejectsFullChannel(t *testing.T) {
	svc := startService(t)
	host := svc.session(t, "K1ABC")
	guest := svc.session(t, "W2DEF")
	third := svc.session(t, "N3GHI")

	require.NoError(t, host.Create(context.Background()))
	require.NoError(t, guest.Join(context.Background(), host.ChannelID()))
	waitEvent[PartnerJoinedEvent](t, host.Events())

	err := third.Join(context.Background(), host.ChannelID())
	require.Error(t, err)
	assert.Equal(t, ReasonChannelFull, third.Status())
	assert.Equal(t, StateIdle, third.State())
}

func TestInvalidTokenClosesWithReason(t *testing.T) {
	svc := startService(t)
	user := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	s := NewSession(Config{BaseURL: svc.baseURL, Token: "garbage", User: user})
	t.Cleanup(s.Close)

	require.NoError(t, s.connect(context.Background(), JoinCreate, "123456"))

	closed := waitEvent[ClosedEvent](t, s.Events())
	assert.Equal(t, "Connection failed: Invalid authentication token", closed.Status)
	assert.Equal(t, StateIdle, s.State())
}

func TestSecondChannelRejectedWhileActive(t *testing.T) {
	svc := startService(t)
	first := svc.session(t, "K1ABC")
	require.NoError(t, first.Create(context.Background()))

	// Same operator, second connection.
	user := models.User{ID: first.cfg.User.ID, Callsign: "K1ABC"}
	token, err := svc.verifier.Mint(user.ID, time.Hour)
	require.NoError(t, err)
	second := NewSession(Config{BaseURL: svc.baseURL, Token: token, User: user})
	t.Cleanup(second.Close)

	require.NoError(t, second.connect(context.Background(), JoinCreate, "999999"))

	closed := waitEvent[ClosedEvent](t, second.Events())
	assert.Equal(t, "Connection failed: User 'K1ABC' is already in a channel", closed.Status)
}

func TestServerCloseClearsRandomChannelOnly(t *testing.T) {
	s := NewSession(Config{User: models.User{ID: uuid.New()}})
	t.Cleanup(s.Close)

	s.mu.Lock()
	s.joinKind = JoinRandom
	s.channelID = "123456"
	s.mu.Unlock()
	s.handleClose(CloseInfo{Code: 1006})
	assert.Empty(t, s.ChannelID())

	s.mu.Lock()
	s.joinKind = JoinSpecific
	s.channelID = "654321"
	s.mu.Unlock()
	s.handleClose(CloseInfo{Code: 1006})
	assert.Equal(t, "654321", s.ChannelID())
}

func TestSetBlankDelayClamps(t *testing.T) {
	s := NewSession(Config{User: models.User{ID: uuid.New()}})
	t.Cleanup(s.Close)

	s.SetBlankDelay(10 * time.Second)
	s.mu.Lock()
	delay := s.blankDelay
	s.mu.Unlock()
	assert.Equal(t, morse.MaxBlankDelay, delay)

	s.SetBlankDelay(time.Millisecond)
	s.mu.Lock()
	delay = s.blankDelay
	s.mu.Unlock()
	assert.Equal(t, morse.MinBlankDelay, delay)
}

func TestPressIgnoredWhileIdle(t *testing.T) {
	s := NewSession(Config{User: models.User{ID: uuid.New()}})
	t.Cleanup(s.Close)

	s.PressStart()
	_, sent := s.PressEnd()
	assert.False(t, sent)
	assert.Zero(t, s.Transcript().Len())
}
