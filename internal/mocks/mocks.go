package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"morse-service/internal/models"
	"morse-service/internal/rabbitmq"
	"morse-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByCallsign(ctx context.Context, callsign string) (models.User, error) {
	args := m.Called(ctx, callsign)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListFollows(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var list []models.User
	if val := args.Get(0); val != nil {
		list = val.([]models.User)
	}
	return list, args.Error(1)
}

func (m *UserRepositoryMock) Follow(ctx context.Context, userID, targetID uuid.UUID) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}

func (m *UserRepositoryMock) Unfollow(ctx context.Context, userID, targetID uuid.UUID) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}

func (m *UserRepositoryMock) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, targetID)
	return args.Bool(0), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ repositories.UserRepository = (*UserRepositoryMock)(nil)
	_ rabbitmq.Publisher          = (*PublisherMock)(nil)
)
