package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meshdemo/internal/model"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ProcessOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
