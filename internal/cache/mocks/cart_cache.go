package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartCache struct {
	mock.Mock
}

func (m *CartCache) Get(ctx context.Context, userID string) (*models.Cart, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Cart), args.Bool(1), args.Error(2)
}

func (m *CartCache) Set(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *CartCache) Invalidate(ctx context.Context, userID string, version int64) error {
	return m.Called(ctx, userID, version).Error(0)
}
