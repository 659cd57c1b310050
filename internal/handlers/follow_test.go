package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"morse-service/internal/middleware"
	"morse-service/internal/mocks"
	"morse-service/internal/models"
	"morse-service/internal/relay"
	"morse-service/internal/repositories"
)

func setupFollowRouter(handler *FollowHandler, caller models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, caller)
		c.Next()
	})
	r.GET("/follow/list", handler.ListFollows)
	r.POST("/follow/:user_id", handler.Follow)
	r.DELETE("/follow/:user_id", handler.Unfollow)
	return r
}

func TestListFollowsOverlaysPresence(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	waiting := models.User{ID: uuid.New(), Callsign: "W2DEF", Status: models.StatusOffline}
	idle := models.User{ID: uuid.New(), Callsign: "N3GHI", Status: models.StatusOnline}

	manager := relay.NewManager()
	_, err := manager.Connect(&relay.Member{User: waiting}, "123456")
	require.NoError(t, err)

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("ListFollows", mock.Anything, caller.ID).Return([]models.User{waiting, idle}, nil).Once()

	handler := NewFollowHandler(userRepo, manager, nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodGet, "/follow/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data  []models.User `json:"data"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, models.StatusWaiting, resp.Data[0].Status)
	assert.Equal(t, models.StatusOnline, resp.Data[1].Status)
	userRepo.AssertExpectations(t)
}

func TestListFollowsRepoError(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("ListFollows", mock.Anything, caller.ID).Return(([]models.User)(nil), assert.AnError).Once()

	handler := NewFollowHandler(userRepo, relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodGet, "/follow/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestFollowSuccess(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	targetID := uuid.New()

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("Follow", mock.Anything, caller.ID, targetID).Return(nil).Once()

	handler := NewFollowHandler(userRepo, relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodPost, "/follow/"+targetID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestFollowSelf(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	handler := NewFollowHandler(new(mocks.UserRepositoryMock), relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodPost, "/follow/"+caller.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowUnknownTarget(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	targetID := uuid.New()

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("Follow", mock.Anything, caller.ID, targetID).Return(repositories.ErrUserNotFound).Once()

	handler := NewFollowHandler(userRepo, relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodPost, "/follow/"+targetID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestFollowAlreadyFollowing(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	targetID := uuid.New()

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("Follow", mock.Anything, caller.ID, targetID).Return(repositories.ErrAlreadyFollowing).Once()

	handler := NewFollowHandler(userRepo, relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodPost, "/follow/"+targetID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotModified, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestFollowInvalidID(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	handler := NewFollowHandler(new(mocks.UserRepositoryMock), relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodPost, "/follow/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnfollowSuccess(t *testing.T) {
	caller := models.User{ID: uuid.New(), Callsign: "K1ABC"}
	targetID := uuid.New()

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("Unfollow", mock.Anything, caller.ID, targetID).Return(nil).Once()

	handler := NewFollowHandler(userRepo, relay.NewManager(), nil)
	router := setupFollowRouter(handler, caller)

	req := httptest.NewRequest(http.MethodDelete, "/follow/"+targetID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	userRepo.AssertExpectations(t)
}
