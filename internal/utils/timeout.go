package utils

import (
	"context"
	"time"
)

// DefaultStoreTimeout applies when the store config leaves the timeout unset.
const DefaultStoreTimeout = 5 * time.Second

// WithStoreTimeout bounds a single round trip to the cart store.
func WithStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
