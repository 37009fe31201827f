package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meshdemo/internal/model"
)

type MockInventoryClient struct {
	mock.Mock
}

func (m *MockInventoryClient) Check(ctx context.Context, productID string, quantity int) (*model.InventoryCheckResult, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryCheckResult), args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) Process(ctx context.Context, req model.PaymentRequest) (*model.PaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentResponse), args.Error(1)
}
