package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"morse-service/internal/models"
	"morse-service/internal/relay"
	"morse-service/internal/repositories"
	"morse-service/internal/telemetry"
)

// FollowHandler manages the friend list.
type FollowHandler struct {
	users   repositories.UserRepository
	manager *relay.Manager
	auditor *telemetry.AuditEmitter
}

// NewFollowHandler builds a FollowHandler.
func NewFollowHandler(users repositories.UserRepository, manager *relay.Manager, auditor *telemetry.AuditEmitter) *FollowHandler {
	return &FollowHandler{users: users, manager: manager, auditor: auditor}
}

// ListFollows returns everyone the caller follows, with live presence:
// waiting or busy when they occupy a channel, online otherwise.
func (h *FollowHandler) ListFollows(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	follows, err := h.users.ListFollows(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load follows"})
		return
	}

	statusByID := map[uuid.UUID]models.Status{}
	for _, ch := range h.manager.Snapshot() {
		for _, u := range ch.Users {
			statusByID[u.ID] = u.Status
		}
	}
	for i := range follows {
		if status, active := statusByID[follows[i].ID]; active {
			follows[i].Status = status
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": follows, "count": len(follows)})
}

// Follow adds a user to the caller's friend list.
func (h *FollowHandler) Follow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if targetID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	err = h.users.Follow(c.Request.Context(), user.ID, targetID)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case errors.Is(err, repositories.ErrAlreadyFollowing):
		c.Status(http.StatusNotModified)
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not follow user"})
		return
	}

	h.auditor.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("user %s followed %s", user.ID, targetID),
		requestIDFromContext(c), userIDFromContext(c))
	c.Status(http.StatusCreated)
}

// Unfollow removes a user from the caller's friend list.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.users.Unfollow(c.Request.Context(), user.ID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow user"})
		return
	}
	c.Status(http.StatusNoContent)
}
