package handler

import (
	"net/http"
	"strconv"

	"shopoholic/internal/models"
)

// CartHandler - корзина
func (h *Handler) CartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := h.API.Cart(r.Context(), h.store(r).Token())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.pageWithCart(r, "Корзина", "cart", cart)
	h.render(w, http.StatusOK, data)
}

// AddToCartHandler - добавление из каталога, затем назад на ту же страницу
func (h *Handler) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		http.Error(w, "Неверный товар", http.StatusBadRequest)
		return
	}
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || qty < 1 {
		qty = 1
	}

	if _, err := h.API.AddToCart(r.Context(), h.store(r).Token(), productID, qty); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, localPath(r.FormValue("back"), "/cart"), http.StatusSeeOther)
}

// UpdateCartItemHandler - новое количество; 0 удаляет позицию
func (h *Handler) UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	h.changeCart(w, r, func(token string, itemID int64) (*models.Cart, error) {
		qty, err := strconv.Atoi(r.FormValue("quantity"))
		if err != nil {
			qty = 0
		}
		return h.API.UpdateCartItem(r.Context(), token, itemID, qty)
	})
}

func (h *Handler) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	h.changeCart(w, r, func(token string, itemID int64) (*models.Cart, error) {
		return h.API.RemoveFromCart(r.Context(), token, itemID)
	})
}

func (h *Handler) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.API.ClearCart(r.Context(), h.store(r).Token()); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) changeCart(w http.ResponseWriter, r *http.Request, op func(token string, itemID int64) (*models.Cart, error)) {
	itemID, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if _, err := op(h.store(r).Token(), itemID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
