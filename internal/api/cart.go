package api

import (
	"net/http"

	"shopoholic/internal/models"
)

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type cartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	s.writeCart(w, r)(s.Carts.Get(r.Context(), UserFrom(r.Context()).ID))
}

// AddToCart - POST /cart/items, количество по умолчанию 1
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeInvalid(w, models.FormErrors{"quantity": "Количество должно быть положительным"})
		return
	}

	s.writeCart(w, r)(s.Carts.Add(r.Context(), UserFrom(r.Context()).ID, req.ProductID, req.Quantity))
}

// UpdateCartItem - PUT /cart/items/{id}; quantity <= 0 удаляет позицию
func (s *Server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writeCart(w, r)(s.Carts.SetQuantity(r.Context(), UserFrom(r.Context()).ID, pathID(r), req.Quantity))
}

func (s *Server) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s.writeCart(w, r)(s.Carts.Remove(r.Context(), UserFrom(r.Context()).ID, pathID(r)))
}

func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	s.writeCart(w, r)(s.Carts.Clear(r.Context(), UserFrom(r.Context()).ID))
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request) func(*models.Cart, error) {
	return func(cart *models.Cart, err error) {
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		cart.Recalculate()
		writeJSON(w, http.StatusOK, cart)
	}
}
