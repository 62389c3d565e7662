package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Per-line limits. The request tags below repeat them as literals.
const (
	MaxItemQuantity = 10000
	MaxUnitPrice    = 1_000_000
)

var (
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrQuantityLimit   = errors.New("item quantity exceeds limit")
	ErrTotalOutOfRange = errors.New("cart total out of range")
)

type CartItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// Cart is the full snapshot read from and written back to the store.
// TotalPrice is derived from Items and is recomputed by every mutation.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
	Version    int64      `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type AddItemRequest struct {
	ProductID string  `json:"productId" validate:"required,mongodb"`
	Quantity  int     `json:"quantity"  validate:"required,gt=0,max=10000"`
	UnitPrice float64 `json:"price"     validate:"required,gt=0,lte=1000000"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=10000"`
}

type ReplaceItemsRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,dive"`
}

type CartItemRequest struct {
	ProductID string  `json:"productId" validate:"required,mongodb"`
	Quantity  int     `json:"quantity"  validate:"required,gt=0,max=10000"`
	UnitPrice float64 `json:"price"     validate:"required,gt=0,lte=1000000"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges into an existing line by product id, keeping the price
// captured when the line was first added. A merge that would take the line
// past MaxItemQuantity leaves the cart untouched.
func (c *Cart) AddItem(productID string, quantity int, unitPrice float64) error {
	i := c.indexOf(productID)

	current := 0
	if i >= 0 {
		current = c.Items[i].Quantity
	}

	if quantity > MaxItemQuantity-current {
		return fmt.Errorf("%w: %d + %d is above %d", ErrQuantityLimit, current, quantity, MaxItemQuantity)
	}

	if i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
	}
	c.Recalculate()

	return nil
}

// SetQuantity sets the quantity of an existing line; zero removes it.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}

	if quantity > MaxItemQuantity {
		return fmt.Errorf("%w: %d is above %d", ErrQuantityLimit, quantity, MaxItemQuantity)
	}

	if quantity == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.Recalculate()

	return nil
}

func (c *Cart) RemoveItem(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()

	return nil
}

// ReplaceItems swaps the whole item list. Repeated product ids collapse into
// the first occurrence exactly as successive AddItem calls would. On error
// the cart keeps its previous items.
func (c *Cart) ReplaceItems(items []CartItem) error {
	next := Cart{Items: make([]CartItem, 0, len(items))}
	for _, item := range items {
		if err := next.AddItem(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return err
		}
	}

	c.Items = next.Items
	c.Recalculate()

	return nil
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalPrice = 0
}

func (c *Cart) Recalculate() {
	c.TotalPrice = CalculateTotal(c.Items)
}

// CheckTotal reports a total that cannot be stored or rendered as JSON.
func (c *Cart) CheckTotal() error {
	if math.IsNaN(c.TotalPrice) || math.IsInf(c.TotalPrice, 0) || c.TotalPrice < 0 {
		return fmt.Errorf("%w: %v", ErrTotalOutOfRange, c.TotalPrice)
	}
	return nil
}

func CalculateTotal(items []CartItem) float64 {
	var total float64

	for _, item := range items {
		total += float64(item.Quantity) * item.UnitPrice
	}

	return total
}
