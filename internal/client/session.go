package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"morse-service/internal/models"
	"morse-service/internal/morse"
)

// ConnState is the session's connection lifecycle state.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Idle"
	}
}

// JoinKind records how the current connection was requested; the close rules
// differ between a best-effort random match and an identifier-bound join.
type JoinKind int

const (
	JoinNone JoinKind = iota
	JoinCreate
	JoinRandom
	JoinSpecific
)

// Event is the tagged union delivered to the UI over the session's event
// channel. One dispatch point replaces the original scatter of callbacks.
type Event interface{ isEvent() }

// OpenedEvent fires when the transport is up. ChannelID is empty for a
// random match until the relay reveals it.
type OpenedEvent struct {
	ChannelID string
}

// PartnerJoinedEvent fires when the other operator enters the channel.
type PartnerJoinedEvent struct {
	User      models.User
	ChannelID string
}

// PartnerLeftEvent fires when the partner disappears.
type PartnerLeftEvent struct {
	User models.User
}

// SignalEvent fires for every symbol appended to the transcript. Local is
// true for the operator's own taps.
type SignalEvent struct {
	Signal morse.Signal
	Local  bool
}

// ClosedEvent fires when the connection ends, by either side.
type ClosedEvent struct {
	Status string
}

func (OpenedEvent) isEvent()        {}
func (PartnerJoinedEvent) isEvent() {}
func (PartnerLeftEvent) isEvent()   {}
func (SignalEvent) isEvent()        {}
func (ClosedEvent) isEvent()        {}

// Config carries everything a session needs to reach the service.
type Config struct {
	// BaseURL is the http(s) root of the service; the websocket endpoint is
	// derived from it.
	BaseURL string
	Token   string
	User    models.User
	// DisplayLimit bounds the transcript; zero means the default.
	DisplayLimit int
	// BlankDelay is the initial trailing-space timing, clamped to the
	// supported range.
	BlankDelay time.Duration
}

// Session is the client-side state machine for one operator. It owns exactly
// one transport handle and one pending-invitation slot. All state changes
// are serialized by its mutex, whether they come from UI intents, inbound
// frames or the trailing-space timer.
type Session struct {
	mu sync.Mutex

	cfg        Config
	transport  *Transport
	directory  *Directory
	transcript *morse.Transcript
	spacer     *morse.Spacer
	blankDelay time.Duration

	state     ConnState
	joinKind  JoinKind
	channelID string
	partner   *models.User
	status    string
	pending   *Invitation

	pressed    bool
	pressStart time.Time

	events chan Event
}

// NewSession constructs an idle session.
func NewSession(cfg Config) *Session {
	if cfg.BlankDelay == 0 {
		cfg.BlankDelay = morse.MaxBlankDelay
	}
	s := &Session{
		cfg:        cfg,
		transport:  NewTransport(),
		directory:  NewDirectory(cfg.BaseURL, cfg.Token),
		transcript: morse.NewTranscript(cfg.DisplayLimit),
		blankDelay: morse.ClampBlankDelay(cfg.BlankDelay),
		status:     "Disconnected",
		events:     make(chan Event, 64),
	}
	s.spacer = morse.NewSpacer(s.sendSpace)
	return s
}

// Events returns the channel the UI drains for session events.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Directory exposes the read-only directory helper bound to this session's
// credentials.
func (s *Session) Directory() *Directory {
	return s.directory
}

// Create opens a freshly generated channel and waits for a partner.
func (s *Session) Create(ctx context.Context) error {
	return s.connect(ctx, JoinCreate, models.NewChannelID())
}

// JoinRandom asks the relay for a channel with someone waiting. The
// authoritative identifier arrives with the first user_joined event.
func (s *Session) JoinRandom(ctx context.Context) error {
	return s.connect(ctx, JoinRandom, "")
}

// Join validates the identifier, pre-flights capacity against the directory
// and only then opens the transport. Rejections leave the session Idle.
func (s *Session) Join(ctx context.Context, channelID string) error {
	if !models.ValidChannelID(channelID) {
		return s.fail("Channel ID must be a 6-digit number")
	}

	check, err := s.directory.CanJoin(ctx, channelID)
	if err != nil {
		return s.fail("Network error while validating channel")
	}
	if !check.Allowed {
		return s.fail(check.Reason)
	}

	return s.connect(ctx, JoinSpecific, channelID)
}

// Disconnect closes the transport and resets to Idle. An identifier-bound
// channel is kept so the operator can rejoin it; a random match is forgotten.
func (s *Session) Disconnect() {
	s.transport.Close()
	s.spacer.Cancel()

	s.mu.Lock()
	s.state = StateIdle
	s.partner = nil
	s.pressed = false
	s.status = "Disconnected"
	if s.joinKind == JoinRandom {
		s.channelID = ""
	}
	s.mu.Unlock()

	s.emit(ClosedEvent{Status: "Disconnected"})
}

func (s *Session) connect(ctx context.Context, kind JoinKind, channelID string) error {
	s.mu.Lock()
	s.state = StateConnecting
	s.status = "Connecting..."
	s.mu.Unlock()

	url := s.endpoint(kind, channelID)
	if err := s.transport.Open(ctx, url, s.handleFrame, s.handleClose); err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.status = "Failed to connect"
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateConnected
	s.joinKind = kind
	s.channelID = channelID
	s.partner = nil
	s.pending = nil
	switch kind {
	case JoinCreate:
		s.status = fmt.Sprintf("Hosting channel %s - Waiting for someone to join...", channelID)
	case JoinSpecific:
		s.status = fmt.Sprintf("Joining channel %s...", channelID)
	default:
		s.status = "Connected - Waiting for partner..."
	}
	s.mu.Unlock()

	s.emit(OpenedEvent{ChannelID: channelID})
	return nil
}

// fail records a validation failure without touching the transport.
func (s *Session) fail(message string) error {
	s.mu.Lock()
	s.status = message
	s.mu.Unlock()
	return fmt.Errorf("%s", message)
}

func (s *Session) endpoint(kind JoinKind, channelID string) string {
	wsBase := strings.Replace(s.cfg.BaseURL, "http", "ws", 1)
	if kind == JoinRandom {
		return fmt.Sprintf("%s/channel/random?token=%s", wsBase, s.cfg.Token)
	}
	return fmt.Sprintf("%s/channel/%s?token=%s", wsBase, channelID, s.cfg.Token)
}

// handleFrame runs on the transport's read goroutine.
func (s *Session) handleFrame(d decoded) {
	switch d.kind {
	case decodedJoined:
		s.mu.Lock()
		if d.event.ChannelID != "" && d.event.ChannelID != s.channelID {
			s.channelID = d.event.ChannelID
		}
		isPartner := d.event.User.ID != s.cfg.User.ID
		if isPartner {
			partner := d.event.User
			s.partner = &partner
			s.status = fmt.Sprintf("Connected with %s", partner.Callsign)
		}
		channelID := s.channelID
		s.mu.Unlock()

		if isPartner {
			s.emit(PartnerJoinedEvent{User: d.event.User, ChannelID: channelID})
		}

	case decodedLeft:
		s.mu.Lock()
		s.partner = nil
		s.status = "Partner disconnected"
		s.mu.Unlock()

		s.emit(PartnerLeftEvent{User: d.event.User})

	case decodedSignal, decodedLegacy:
		signal := morse.Signal(d.signal)
		s.transcript.Append(signal)
		s.emit(SignalEvent{Signal: signal})
	}
}

// handleClose runs once per server-side close, never for closes this client
// initiated.
func (s *Session) handleClose(ci CloseInfo) {
	s.spacer.Cancel()

	s.mu.Lock()
	s.state = StateIdle
	s.partner = nil
	s.pressed = false
	s.status = ci.Status()
	// A random match that never learned its channel has nothing to rejoin.
	if s.joinKind == JoinRandom {
		s.channelID = ""
	}
	status := s.status
	s.mu.Unlock()

	s.emit(ClosedEvent{Status: status})
}

// PressStart marks the key going down. It cancels a pending trailing space.
func (s *Session) PressStart() {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	s.pressed = true
	s.pressStart = time.Now()
	s.mu.Unlock()

	s.spacer.Cancel()
}

// PressEnd marks the key coming up and sends the encoded symbol. The
// transcript only records symbols that were actually transmitted.
func (s *Session) PressEnd() (morse.Signal, bool) {
	s.mu.Lock()
	if !s.pressed || s.state != StateConnected {
		s.mu.Unlock()
		return "", false
	}
	held := time.Since(s.pressStart)
	s.pressed = false
	s.mu.Unlock()

	return s.Tap(held)
}

// Tap sends the symbol for one press of the given duration. On success the
// symbol is echoed locally and the trailing-space timer is armed.
func (s *Session) Tap(held time.Duration) (morse.Signal, bool) {
	signal := morse.Encode(held)
	if !s.transport.Send(string(signal)) {
		return signal, false
	}

	s.transcript.Append(signal)
	s.emit(SignalEvent{Signal: signal, Local: true})

	s.mu.Lock()
	delay := s.blankDelay
	s.mu.Unlock()
	s.spacer.Arm(delay)

	return signal, true
}

// sendSpace is the spacer's emit hook. The space is dropped entirely when
// the send fails; it must not appear in the local transcript either.
func (s *Session) sendSpace(sig morse.Signal) {
	if !s.transport.Send(string(sig)) {
		return
	}
	s.transcript.Append(sig)
	s.emit(SignalEvent{Signal: sig, Local: true})
}

// SetBlankDelay tunes the trailing-space timing, clamped to [500ms, 1500ms].
func (s *Session) SetBlankDelay(d time.Duration) {
	s.mu.Lock()
	s.blankDelay = morse.ClampBlankDelay(d)
	s.mu.Unlock()
}

// State returns the connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the human-readable status line.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ChannelID returns the bound channel identifier, "" when unknown.
func (s *Session) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// Partner returns the current partner, or nil while alone.
func (s *Session) Partner() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.partner == nil {
		return nil
	}
	partner := *s.partner
	return &partner
}

// Transcript exposes the session's display buffer.
func (s *Session) Transcript() *morse.Transcript {
	return s.transcript
}

// Close shuts the session down for good.
func (s *Session) Close() {
	s.spacer.Stop()
	s.transport.Close()
}

// emit never blocks the protocol goroutines; if the UI stops draining, the
// oldest unread event is dropped.
func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- e:
		default:
		}
	}
}
