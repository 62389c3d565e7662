package repository

import (
	"context"
	"errors"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrDuplicateCart   = errors.New("cart already exists for user")
	ErrVersionConflict = errors.New("cart was modified concurrently")
	ErrInvalidID       = errors.New("invalid identifier")
)

// CartRepository persists whole cart snapshots. There is no partial update:
// every mutation writes the full cart back with Replace.
type CartRepository interface {
	FindByOwner(ctx context.Context, userID string) (*models.Cart, error)
	FindByID(ctx context.Context, cartID string) (*models.Cart, error)

	// Insert assigns the cart ID and sets Version to 1. Returns
	// ErrDuplicateCart when the owner already has a cart.
	Insert(ctx context.Context, cart *models.Cart) error

	// Replace overwrites the stored snapshot only if its version still equals
	// expectedVersion, and bumps cart.Version on success. Returns
	// ErrVersionConflict otherwise.
	Replace(ctx context.Context, cart *models.Cart, expectedVersion int64) error
}
