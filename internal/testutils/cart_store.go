package testutils

import (
	"context"
	"sync"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	repository "github.com/aaravmahajanofficial/clothing-store/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryCartStore is a versioned in-memory CartRepository for tests that
// need real read-modify-write behaviour rather than scripted mocks.
type MemoryCartStore struct {
	mu      sync.Mutex
	byID    map[string]*models.Cart
	byOwner map[string]string

	// Conflicts counts rejected Replace and Insert calls.
	Conflicts int
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		byID:    make(map[string]*models.Cart),
		byOwner: make(map[string]string),
	}
}

func (m *MemoryCartStore) FindByOwner(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byOwner[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}

	return clone(m.byID[id]), nil
}

func (m *MemoryCartStore) FindByID(_ context.Context, cartID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.byID[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}

	return clone(cart), nil
}

func (m *MemoryCartStore) Insert(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byOwner[cart.UserID]; ok {
		m.Conflicts++
		return repository.ErrDuplicateCart
	}

	cart.ID = primitive.NewObjectID().Hex()
	cart.Version = 1

	m.byID[cart.ID] = clone(cart)
	m.byOwner[cart.UserID] = cart.ID

	return nil
}

func (m *MemoryCartStore) Replace(_ context.Context, cart *models.Cart, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[cart.ID]
	if !ok || stored.Version != expectedVersion {
		m.Conflicts++
		return repository.ErrVersionConflict
	}

	cart.Version = expectedVersion + 1
	m.byID[cart.ID] = clone(cart)

	return nil
}

func clone(cart *models.Cart) *models.Cart {
	c := *cart
	c.Items = append([]models.CartItem{}, cart.Items...)
	return &c
}
