package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"morse-service/internal/auth"
	"morse-service/internal/models"
	"morse-service/internal/observability"
	"morse-service/internal/relay"
	"morse-service/internal/repositories"
)

// ChannelWebSocketHandler upgrades channel connections and runs their relay
// loop until the operator leaves.
type ChannelWebSocketHandler struct {
	manager  *relay.Manager
	verifier *auth.Verifier
	users    repositories.UserRepository
}

// NewChannelWebSocketHandler constructs a ChannelWebSocketHandler.
func NewChannelWebSocketHandler(manager *relay.Manager, verifier *auth.Verifier, users repositories.UserRepository) *ChannelWebSocketHandler {
	return &ChannelWebSocketHandler{manager: manager, verifier: verifier, users: users}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleJoin serves GET /channel/:channel_id. The channel is created on the
// first join.
func (h *ChannelWebSocketHandler) HandleJoin(c *gin.Context) {
	h.serve(c, c.Param("channel_id"), "specific")
}

// HandleRandom serves GET /channel/random: it picks a channel with someone
// waiting, or opens a fresh one, and joins it.
func (h *ChannelWebSocketHandler) HandleRandom(c *gin.Context) {
	h.serve(c, "", "random")
}

func (h *ChannelWebSocketHandler) serve(c *gin.Context, channelID, join string) {
	ctx, span := otel.Tracer("morse-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Rejections happen after the upgrade so the client sees a policy
	// close with a reason instead of a failed handshake.
	user, err := h.authenticate(c)
	if err != nil {
		closeWithPolicy(conn, "Invalid authentication token")
		return
	}

	if join == "random" {
		channelID = h.manager.WaitingChannel()
		if channelID == "" {
			channelID = h.manager.NewChannelID()
		}
	}

	member := &relay.Member{User: user, Conn: conn}
	if _, err := h.manager.Connect(member, channelID); err != nil {
		closeWithPolicy(conn, err.Error())
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		Meta:        observability.MetaFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	observability.IncWSActive()
	observability.IncWSEvent(join, "ws_connect")
	observability.SetActiveChannels(len(h.manager.Snapshot()))
	h.publish(ctx, join, channelID, info, "ws_connect", "")

	h.manager.Broadcast(channelID, models.ChannelEvent{
		Event:     models.EventUserJoined,
		User:      user,
		ChannelID: channelID,
	})

	go h.relayLoop(ctx, conn, member, channelID, join, info)
}

func (h *ChannelWebSocketHandler) relayLoop(ctx context.Context, conn *websocket.Conn, member *relay.Member, channelID, join string, info ConnInfo) {
	var closeReason string
	defer func() {
		h.manager.Disconnect(member, channelID)
		h.manager.Broadcast(channelID, models.ChannelEvent{
			Event: models.EventUserLeft,
			User:  member.User,
		})

		observability.DecWSActive()
		observability.IncWSEvent(join, "ws_disconnect")
		observability.SetActiveChannels(len(h.manager.Snapshot()))
		h.publish(ctx, join, channelID, info, "ws_disconnect", closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(join, "ws_error")
				h.publish(ctx, join, channelID, info, "ws_error", closeReason)
			}
			return
		}
		h.manager.Relay(channelID, raw, member)
		observability.IncRelayedSignal()
	}
}

func (h *ChannelWebSocketHandler) authenticate(c *gin.Context) (models.User, error) {
	token := c.GetHeader("Authorization")
	if token != "" {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return models.User{}, errors.New("invalid authorization header")
		}
		token = parts[1]
	} else {
		token = c.Query("token")
	}
	if token == "" {
		return models.User{}, errors.New("missing token")
	}

	userID, err := h.verifier.UserID(token)
	if err != nil {
		return models.User{}, err
	}
	return h.users.GetUser(c.Request.Context(), userID)
}

func (h *ChannelWebSocketHandler) publish(ctx context.Context, join, channelID string, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"join":        join,
			"channel_id":  channelID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID.String(),
			"device_id": info.Meta.DeviceID,
			"ip":        info.Meta.IP,
		},
	}

	_ = observability.PublishEvent(ctx, "ws_events.channels", "ws_events", event, payload, info.Meta, info.TraceID)
}

// closeWithPolicy rejects the connection with the policy-violation close
// code; clients surface the reason to the operator.
func closeWithPolicy(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		log.Printf("websocket close write failed: %v", err)
	}
	conn.Close()
}
