package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	service "github.com/aaravmahajanofficial/clothing-store/internal/services"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func cartResult(args mock.Arguments) (*models.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return cartResult(m.Called(ctx, userID))
}

func (m *CartService) AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (*models.Cart, error) {
	return cartResult(m.Called(ctx, userID, req))
}

func (m *CartService) UpdateQuantity(ctx context.Context, key service.CartKey, productID string, quantity int) (*models.Cart, error) {
	return cartResult(m.Called(ctx, key, productID, quantity))
}

func (m *CartService) RemoveItem(ctx context.Context, key service.CartKey, productID string) (*models.Cart, error) {
	return cartResult(m.Called(ctx, key, productID))
}

func (m *CartService) ReplaceItems(ctx context.Context, cartID string, items []models.CartItemRequest) (*models.Cart, error) {
	return cartResult(m.Called(ctx, cartID, items))
}

func (m *CartService) ClearCart(ctx context.Context, cartID string) (*models.Cart, error) {
	return cartResult(m.Called(ctx, cartID))
}
