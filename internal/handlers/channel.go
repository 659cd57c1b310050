package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"morse-service/internal/models"
	"morse-service/internal/relay"
)

// ChannelHandler serves the read-only channel directory.
type ChannelHandler struct {
	manager *relay.Manager
}

// NewChannelHandler builds a ChannelHandler.
func NewChannelHandler(manager *relay.Manager) *ChannelHandler {
	return &ChannelHandler{manager: manager}
}

// ListChannels returns every active channel with its occupancy.
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	channels := h.manager.Snapshot()
	c.JSON(http.StatusOK, models.ChannelList{Channels: channels, Count: len(channels)})
}
