package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	"github.com/aaravmahajanofficial/clothing-store/internal/utils"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const uniqueViolation = "23505"

type cartRepository struct {
	DB      *sql.DB
	timeout time.Duration
}

// NewCartRepo stores each cart as one row with its items in a JSONB column.
func NewCartRepo(db *sql.DB, timeout time.Duration) CartRepository {
	return &cartRepository{DB: db, timeout: timeout}
}

func (r *cartRepository) Insert(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	id := primitive.NewObjectID().Hex()

	query := `
		INSERT INTO carts (id, user_id, items, total_price, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $6)
	`

	_, err = r.DB.ExecContext(dbCtx, query, id, cart.UserID, itemsJSON, cart.TotalPrice, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateCart
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}

	cart.ID = id
	cart.Version = 1

	return nil
}

func (r *cartRepository) FindByOwner(ctx context.Context, userID string) (*models.Cart, error) {
	query := `
		SELECT id, user_id, items, total_price, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	return r.findOne(ctx, query, userID)
}

func (r *cartRepository) FindByID(ctx context.Context, cartID string) (*models.Cart, error) {
	query := `
		SELECT id, user_id, items, total_price, version, created_at, updated_at
		FROM carts
		WHERE id = $1
	`

	return r.findOne(ctx, query, cartID)
}

func (r *cartRepository) findOne(ctx context.Context, query string, arg string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	cart := &models.Cart{}

	var itemsJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, arg).Scan(&cart.ID, &cart.UserID, &itemsJSON, &cart.TotalPrice, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return cart, nil
}

func (r *cartRepository) Replace(ctx context.Context, cart *models.Cart, expectedVersion int64) error {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		UPDATE carts
		SET items = $1, total_price = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5
	`

	result, err := r.DB.ExecContext(dbCtx, query, itemsJSON, cart.TotalPrice, cart.UpdatedAt, cart.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update the cart: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrVersionConflict
	}

	cart.Version = expectedVersion + 1

	return nil
}
