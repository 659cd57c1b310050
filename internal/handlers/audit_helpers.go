package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"morse-service/internal/middleware"
	"morse-service/internal/models"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func currentUser(c *gin.Context) (models.User, bool) {
	val, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func userIDFromContext(c *gin.Context) *string {
	if user, ok := currentUser(c); ok {
		id := user.ID.String()
		return &id
	}

	if header := c.GetHeader("X-User-ID"); header != "" {
		if parsed, err := uuid.Parse(header); err == nil {
			id := parsed.String()
			return &id
		}
	}

	return nil
}
