package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockStore) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) ReadAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockStore) WriteAll(ctx context.Context, users []models.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockNotifier) Notify(ctx context.Context, event models.TodoEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}
