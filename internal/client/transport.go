package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"morse-service/internal/models"
)

// CloseInfo describes why the connection went away.
type CloseInfo struct {
	Code   int
	Reason string
}

// AuthRejected reports whether the server closed with the policy-violation
// code it uses for authentication and join rejections.
func (ci CloseInfo) AuthRejected() bool {
	return ci.Code == websocket.ClosePolicyViolation
}

// Status renders the user-facing status line for this close.
func (ci CloseInfo) Status() string {
	if ci.AuthRejected() {
		reason := ci.Reason
		if reason == "" {
			reason = "Authentication error"
		}
		return fmt.Sprintf("Connection failed: %s", reason)
	}
	return "Disconnected"
}

// Transport owns the single physical websocket connection of one session.
// Opening always tears down the previous handle first, under the same lock,
// so there is never a window with two live handles. Frames and closes are
// reported through the callbacks given to Open; callbacks of a superseded
// connection are silenced.
type Transport struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	gen    uint64
	dialer *websocket.Dialer
}

// NewTransport creates a disconnected transport.
func NewTransport() *Transport {
	return &Transport{dialer: websocket.DefaultDialer}
}

// Open dials url, replacing any existing connection. onFrame runs on the
// read goroutine for every inbound frame; onClose runs once when the server
// side ends the connection. A connection dropped by a later Open or by Close
// reports nothing.
func (t *Transport) Open(ctx context.Context, url string, onFrame func(decoded), onClose func(CloseInfo)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.gen++

	conn, resp, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}

	t.conn = conn
	go t.readLoop(conn, t.gen, onFrame, onClose)
	return nil
}

// Send transmits one tap frame. It returns false, without queueing or
// retrying, when no connection is open or the write fails.
func (t *Transport) Send(signal string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return false
	}
	payload, _ := json.Marshal(models.SignalFrame{Type: models.FrameTypeMorse, Signal: signal})
	return t.conn.WriteMessage(websocket.TextMessage, payload) == nil
}

// Connected reports whether a connection is currently open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close drops the current connection, if any. The read loop of the dropped
// connection exits without reporting a close.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return
	}
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = t.conn.Close()
	t.conn = nil
	t.gen++
}

func (t *Transport) readLoop(conn *websocket.Conn, gen uint64, onFrame func(decoded), onClose func(CloseInfo)) {
	for {
		_, raw, err := conn.ReadMessage()
		if err == nil {
			onFrame(decodeFrame(raw))
			continue
		}

		t.mu.Lock()
		superseded := t.gen != gen
		if !superseded {
			_ = t.conn.Close()
			t.conn = nil
			t.gen++
		}
		t.mu.Unlock()

		if !superseded {
			onClose(closeInfo(err))
		}
		return
	}
}

func closeInfo(err error) CloseInfo {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return CloseInfo{Code: ce.Code, Reason: ce.Text}
	}
	return CloseInfo{Code: websocket.CloseAbnormalClosure}
}
