package cache

import (
	"context"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
)

// CartCache holds rendered carts keyed by owner. It is only ever read by
// GetCart; every write path goes to the store and then calls Invalidate with
// the version it wrote. Set must not store a cart older than that version.
type CartCache interface {
	Get(ctx context.Context, userID string) (*models.Cart, bool, error)
	Set(ctx context.Context, cart *models.Cart) error
	Invalidate(ctx context.Context, userID string, version int64) error
}

const (
	CartKeyPrefix    = "cart"
	VersionKeySuffix = "version"
)

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// VersionKey holds the last version written for an owner's cart.
func VersionKey(userID string) string {
	return Key(Key(CartKeyPrefix, userID), VersionKeySuffix)
}

// Noop is used when the cache is disabled in config.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Cart, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, *models.Cart) error                 { return nil }
func (Noop) Invalidate(context.Context, string, int64) error         { return nil }
