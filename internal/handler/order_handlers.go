package handler

import (
	"net/http"
	"strconv"

	"shopoholic/internal/guard"
	"shopoholic/internal/models"
)

var checkoutFields = []string{
	"full_name", "phone", "email", "address", "city", "postal_code",
	"payment_method", "delivery_method", "comment",
}

// CheckoutHandler - оформление заказа из корзины
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	st := h.store(r)

	cart, err := h.API.Cart(r.Context(), st.Token())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.pageWithCart(r, "Оформление заказа", "checkout", cart)

	if r.Method != http.MethodPost {
		profile := guard.SnapshotFrom(r.Context()).Profile
		data.Form = map[string]string{
			"full_name":       profile.Name,
			"email":           profile.Email,
			"payment_method":  models.PaymentCard,
			"delivery_method": models.DeliveryCourier,
		}
		h.render(w, http.StatusOK, data)
		return
	}

	data.Form = formValues(r, checkoutFields...)
	if len(cart.Items) == 0 {
		data.Error = "Нельзя оформить заказ: корзина пуста"
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	in := models.OrderInput{
		Customer: models.CustomerInfo{
			FullName:   data.Form["full_name"],
			Phone:      data.Form["phone"],
			Email:      data.Form["email"],
			Address:    data.Form["address"],
			City:       data.Form["city"],
			PostalCode: data.Form["postal_code"],
		},
		PaymentMethod:  data.Form["payment_method"],
		DeliveryMethod: data.Form["delivery_method"],
		Comment:        data.Form["comment"],
	}

	if errs := in.Validate(); !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	order, err := h.API.CreateOrder(r.Context(), st.Token(), in)
	if fields, ok := apiFieldErrors(err); ok {
		data.FormErrors = fields
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info().Int64("order_id", order.ID).Msg("заказ оформлен")
	http.Redirect(w, r, "/order-confirmation/"+strconv.FormatInt(order.ID, 10), http.StatusSeeOther)
}

// OrderConfirmationHandler - итог оформленного заказа
func (h *Handler) OrderConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	order, err := h.API.Order(r.Context(), h.store(r).Token(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, "Заказ оформлен", "order_confirmation")
	data.Order = order
	h.render(w, http.StatusOK, data)
}

// OrdersHandler - история заказов
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	page := pageNumber(r)

	list, err := h.API.Orders(r.Context(), h.store(r).Token(), page, PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, "Мои заказы", "orders")
	data.Orders = list.Orders
	data.Pagination = models.Pagination{Page: page, PerPage: PerPage, TotalCount: list.TotalCount}
	h.render(w, http.StatusOK, data)
}
