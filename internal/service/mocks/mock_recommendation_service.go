package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meshdemo/internal/model"
)

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Version() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRecommendationService) List(ctx context.Context) (*model.RecommendationList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecommendationList), args.Error(1)
}

func (m *MockRecommendationService) Personalize(ctx context.Context, prefs map[string]any) (*model.PersonalizedRecommendations, error) {
	args := m.Called(ctx, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PersonalizedRecommendations), args.Error(1)
}
