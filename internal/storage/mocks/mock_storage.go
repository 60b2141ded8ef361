package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"uploadapi/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ResolveFolder(ctx context.Context, token, parentID, name string) (string, error) {
	args := m.Called(ctx, token, parentID, name)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) OpenUploadSession(ctx context.Context, token string, req storage.SessionRequest) (string, error) {
	args := m.Called(ctx, token, req)
	return args.String(0), args.Error(1)
}
