package ws

import (
	"time"

	"github.com/google/uuid"

	"morse-service/internal/observability"
)

// ConnInfo pins the identity of one websocket connection for event payloads.
type ConnInfo struct {
	ConnID      string
	UserID      uuid.UUID
	Meta        observability.RequestMeta
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}
