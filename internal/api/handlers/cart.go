package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/clothing-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	service "github.com/aaravmahajanofficial/clothing-store/internal/services"
	"github.com/aaravmahajanofficial/clothing-store/internal/utils"
	"github.com/aaravmahajanofficial/clothing-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validate,
	}
}

// RegisterRoutes mounts the cart endpoints under /api.
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/carts/{userId}", h.GetCart())
	mux.HandleFunc("POST /api/carts/{userId}/items", h.AddItem())
	mux.HandleFunc("PUT /api/carts/{userId}/items/{productId}", h.UpdateItemQuantity())
	mux.HandleFunc("DELETE /api/carts/{userId}/items/{productId}", h.RemoveItem())
	mux.HandleFunc("DELETE /api/carts/{cid}/products/{pid}", h.RemoveProduct())
	mux.HandleFunc("PUT /api/carts/{cid}", h.ReplaceCart())
	mux.HandleFunc("PUT /api/carts/{cid}/products/{pid}", h.UpdateProductQuantity())
	mux.HandleFunc("DELETE /api/carts/{cid}", h.ClearCart())
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		userID := r.PathValue("userId")

		cart, err := h.cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Warn("Failed to get cart", slog.String("userId", userID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		userID := r.PathValue("userId")

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator, logger) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), userID, &req)
		if err != nil {
			logger.Warn("Failed to add item", slog.String("userId", userID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.String("cartId", cart.ID), slog.String("productId", req.ProductID))
		response.Message(w, http.StatusCreated, "Item added to cart")
	}
}

func (h *CartHandler) UpdateItemQuantity() http.HandlerFunc {
	return h.updateQuantity(func(r *http.Request) (service.CartKey, string) {
		return service.OwnerKey(r.PathValue("userId")), r.PathValue("productId")
	}, "Item quantity updated")
}

func (h *CartHandler) UpdateProductQuantity() http.HandlerFunc {
	return h.updateQuantity(func(r *http.Request) (service.CartKey, string) {
		return service.CartIDKey(r.PathValue("cid")), r.PathValue("pid")
	}, "Product quantity updated")
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return h.remove(func(r *http.Request) (service.CartKey, string) {
		return service.OwnerKey(r.PathValue("userId")), r.PathValue("productId")
	}, "Item removed from cart")
}

func (h *CartHandler) RemoveProduct() http.HandlerFunc {
	return h.remove(func(r *http.Request) (service.CartKey, string) {
		return service.CartIDKey(r.PathValue("cid")), r.PathValue("pid")
	}, "Product removed from cart")
}

func (h *CartHandler) ReplaceCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		cartID := r.PathValue("cid")

		var req models.ReplaceItemsRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator, logger) {
			return
		}

		if _, err := h.cartService.ReplaceItems(r.Context(), cartID, req.Items); err != nil {
			logger.Warn("Failed to replace cart items", slog.String("cartId", cartID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Cart updated")
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		cartID := r.PathValue("cid")

		if _, err := h.cartService.ClearCart(r.Context(), cartID); err != nil {
			logger.Warn("Failed to clear cart", slog.String("cartId", cartID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Cart cleared")
	}
}

type keyExtractor func(r *http.Request) (service.CartKey, string)

func (h *CartHandler) updateQuantity(extract keyExtractor, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		key, productID := extract(r)

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator, logger) {
			return
		}

		if _, err := h.cartService.UpdateQuantity(r.Context(), key, productID, *req.Quantity); err != nil {
			logger.Warn("Failed to update quantity", slog.String("cart_key", key.String()), slog.String("productId", productID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, message)
	}
}

func (h *CartHandler) remove(extract keyExtractor, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		key, productID := extract(r)

		if _, err := h.cartService.RemoveItem(r.Context(), key, productID); err != nil {
			logger.Warn("Failed to remove item", slog.String("cart_key", key.String()), slog.String("productId", productID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, message)
	}
}
