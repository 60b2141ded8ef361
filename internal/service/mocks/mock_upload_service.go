package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"uploadapi/internal/model"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) CreateUploadURL(ctx context.Context, req model.UploadURLRequest) (*model.UploadURLResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*model.UploadURLResult), args.Error(1)
	}
	return nil, args.Error(1)
}
