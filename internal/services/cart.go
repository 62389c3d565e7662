package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/clothing-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/clothing-store/internal/errors"
	"github.com/aaravmahajanofficial/clothing-store/internal/metrics"
	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	repository "github.com/aaravmahajanofficial/clothing-store/internal/repositories"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const invalidateTimeout = time.Second

var errRetriesExhausted = errors.New("cart write retries exhausted")

type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, key CartKey, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, key CartKey, productID string) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cartID string, items []models.CartItemRequest) (*models.Cart, error)
	ClearCart(ctx context.Context, cartID string) (*models.Cart, error)
}

type keyKind int

const (
	byOwner keyKind = iota
	byCartID
)

// CartKey addresses a cart either through its owner or through its own id.
type CartKey struct {
	kind keyKind
	id   string
}

func OwnerKey(userID string) CartKey {
	return CartKey{kind: byOwner, id: userID}
}

func CartIDKey(cartID string) CartKey {
	return CartKey{kind: byCartID, id: cartID}
}

func (k CartKey) String() string {
	if k.kind == byOwner {
		return "owner:" + k.id
	}
	return "cart:" + k.id
}

type cartService struct {
	repo        repository.CartRepository
	cache       cache.CartCache
	validate    *validator.Validate
	maxAttempts int
	now         func() time.Time
	sfg         singleflight.Group
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, validate *validator.Validate, maxAttempts int) CartService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &cartService{
		repo:        repo,
		cache:       cartCache,
		validate:    validate,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("get", err) }()

	logger := middleware.LoggerFromContext(ctx)

	if err := s.validateID("userId", userID); err != nil {
		return nil, err
	}

	cached, found, cacheErr := s.cache.Get(ctx, userID)
	switch {
	case cacheErr != nil:
		metrics.CartCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("Cart cache read failed, falling back to store", slog.String("userId", userID), slog.String("error", cacheErr.Error()))
	case found:
		metrics.CartCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CartCacheLookups.WithLabelValues("miss").Inc()
	}

	// the shared read must not fail for every waiter when the first caller goes away
	fillCtx := context.WithoutCancel(ctx)

	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		cart, err := s.repo.FindByOwner(fillCtx, userID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(fillCtx, cart); err != nil {
			logger.Warn("Failed to populate cart cache", slog.String("userId", userID), slog.String("error", err.Error()))
		}

		return cart, nil
	})
	if err != nil {
		return nil, s.storeError(logger, err, "Failed to fetch cart")
	}

	return v.(*models.Cart), nil
}

func (s *cartService) AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("add_item", err) }()

	if err := s.validateID("userId", userID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ValidationError("Invalid item").WithDetail(err.Error()).WithError(err)
	}

	return s.mutate(ctx, "add_item", OwnerKey(userID), true, func(c *models.Cart) error {
		return c.AddItem(req.ProductID, req.Quantity, req.UnitPrice)
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, key CartKey, productID string, quantity int) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("update_quantity", err) }()

	if err := s.validateKey(key); err != nil {
		return nil, err
	}

	if err := s.validateID("productId", productID); err != nil {
		return nil, err
	}

	if quantity < 0 {
		return nil, appErrors.AddValidationError("quantity", "must be zero or greater")
	}

	if quantity > models.MaxItemQuantity {
		return nil, appErrors.AddValidationError("quantity", fmt.Sprintf("must be at most %d", models.MaxItemQuantity))
	}

	return s.mutate(ctx, "update_quantity", key, false, func(c *models.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, key CartKey, productID string) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("remove_item", err) }()

	if err := s.validateKey(key); err != nil {
		return nil, err
	}

	if err := s.validateID("productId", productID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "remove_item", key, false, func(c *models.Cart) error {
		return c.RemoveItem(productID)
	})
}

func (s *cartService) ReplaceItems(ctx context.Context, cartID string, items []models.CartItemRequest) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("replace_items", err) }()

	if err := s.validateID("cartId", cartID); err != nil {
		return nil, err
	}

	replacement := make([]models.CartItem, 0, len(items))

	for i := range items {
		if err := s.validate.Struct(&items[i]); err != nil {
			return nil, appErrors.ValidationError("Invalid item").WithDetail(err.Error()).WithError(err)
		}
		replacement = append(replacement, models.CartItem{
			ProductID: items[i].ProductID,
			Quantity:  items[i].Quantity,
			UnitPrice: items[i].UnitPrice,
		})
	}

	return s.mutate(ctx, "replace_items", CartIDKey(cartID), false, func(c *models.Cart) error {
		return c.ReplaceItems(replacement)
	})
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) (cart *models.Cart, err error) {

	defer func() { metrics.ObserveOperation("clear", err) }()

	if err := s.validateID("cartId", cartID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "clear", CartIDKey(cartID), false, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
}

// resolve is the only place a CartKey is turned into a stored cart.
func (s *cartService) resolve(ctx context.Context, key CartKey) (*models.Cart, error) {
	if key.kind == byOwner {
		return s.repo.FindByOwner(ctx, key.id)
	}
	return s.repo.FindByID(ctx, key.id)
}

// mutate runs resolve, apply and write until the write lands on the version
// it read. Only an owner key can create a missing cart.
func (s *cartService) mutate(ctx context.Context, op string, key CartKey, createIfMissing bool, apply func(*models.Cart) error) (*models.Cart, error) {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("operation", op), slog.String("cart_key", key.String()))

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {

		cart, err := s.resolve(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) && createIfMissing && key.kind == byOwner {
				created, retry, err := s.create(ctx, logger, key.id, apply)
				if retry {
					metrics.CartWriteConflicts.WithLabelValues(op).Inc()
					logger.Debug("Cart created concurrently, retrying", slog.Int("attempt", attempt))
					continue
				}
				return created, err
			}
			return nil, s.storeError(logger, err, "Failed to fetch cart")
		}

		expectedVersion := cart.Version

		if err := applyChecked(cart, apply); err != nil {
			return nil, applyError(err, "Failed to update cart")
		}

		cart.UpdatedAt = s.now()

		err = s.repo.Replace(ctx, cart, expectedVersion)
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.CartWriteConflicts.WithLabelValues(op).Inc()
			logger.Debug("Cart changed since it was read, retrying", slog.Int("attempt", attempt), slog.Int64("version", expectedVersion))
			continue
		}
		if err != nil {
			return nil, s.storeError(logger, err, "Failed to update cart")
		}

		s.invalidate(ctx, logger, cart)

		return cart, nil
	}

	logger.Error("Giving up on cart write", slog.Int("attempts", s.maxAttempts))

	return nil, appErrors.DatabaseError("Cart is being modified concurrently, please retry").WithError(errors.Join(errRetriesExhausted, repository.ErrVersionConflict))
}

// create inserts a fresh cart for the owner. retry is true when another
// request created the owner's cart first.
func (s *cartService) create(ctx context.Context, logger *slog.Logger, userID string, apply func(*models.Cart) error) (*models.Cart, bool, error) {

	cart := models.NewCart(userID, s.now())

	if err := applyChecked(cart, apply); err != nil {
		return nil, false, applyError(err, "Failed to create cart")
	}

	err := s.repo.Insert(ctx, cart)
	if errors.Is(err, repository.ErrDuplicateCart) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, s.storeError(logger, err, "Failed to create cart")
	}

	logger.Info("Cart created", slog.String("cartId", cart.ID))

	s.invalidate(ctx, logger, cart)

	return cart, false, nil
}

// applyChecked runs apply and rejects a result whose total cannot be stored.
func applyChecked(cart *models.Cart, apply func(*models.Cart) error) error {
	if err := apply(cart); err != nil {
		return err
	}
	return cart.CheckTotal()
}

func applyError(err error, message string) error {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return appErrors.NotFoundError("Item not found in cart").WithError(err)
	case errors.Is(err, models.ErrQuantityLimit), errors.Is(err, models.ErrTotalOutOfRange):
		return appErrors.ValidationError("Cart limits exceeded").WithDetail(err.Error()).WithError(err)
	default:
		return appErrors.InternalError(message).WithError(err)
	}
}

// invalidate drops the owner's cached cart and records the version just
// written, so a read that started before this write cannot re-fill it.
func (s *cartService) invalidate(ctx context.Context, logger *slog.Logger, cart *models.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	if err := s.cache.Invalidate(ctx, cart.UserID, cart.Version); err != nil {
		logger.Warn("Failed to invalidate cart cache", slog.String("userId", cart.UserID), slog.String("error", err.Error()))
	}
}

func (s *cartService) storeError(logger *slog.Logger, err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		return appErrors.NotFoundError("Cart not found").WithError(err)
	case errors.Is(err, repository.ErrInvalidID):
		return appErrors.ValidationError("Invalid identifier").WithDetail(err.Error()).WithError(err)
	default:
		logger.Error(message, slog.String("error", err.Error()))
		return appErrors.DatabaseError(message).WithError(err)
	}
}

func (s *cartService) validateKey(key CartKey) error {
	if key.kind == byOwner {
		return s.validateID("userId", key.id)
	}
	return s.validateID("cartId", key.id)
}

func (s *cartService) validateID(field, id string) error {
	if err := s.validate.Var(id, "required,mongodb"); err != nil {
		return appErrors.AddValidationError(field, "must be a 24 character hex identifier").WithError(err)
	}
	return nil
}
