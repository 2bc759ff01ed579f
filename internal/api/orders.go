package api

import (
	"net/http"

	"shopoholic/internal/domain"
	"shopoholic/internal/models"
)

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// CreateOrder - POST /orders, заказ из текущей корзины
func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := in.Validate(); !errs.OK() {
		writeInvalid(w, errs)
		return
	}

	user := UserFrom(r.Context())
	order, err := s.Orders.CreateFromCart(r.Context(), user.ID, in)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.Log.Info().Int64("order_id", order.ID).Int64("user_id", user.ID).
		Float64("total", order.TotalAmount).Msg("заказ оформлен")
	writeJSON(w, http.StatusCreated, order)
}

// ListOwnOrders - GET /orders, только заказы текущего пользователя
func (s *Server) ListOwnOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	orders, total, err := s.Orders.ListByUser(r.Context(), UserFrom(r.Context()).ID, limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OrderList{Orders: orders, TotalCount: total})
}

// GetOrder - чужой заказ для покупателя выглядит как несуществующий
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.Orders.FindByID(r.Context(), pathID(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	user := UserFrom(r.Context())
	if order.UserID != user.ID && user.Role != domain.RoleAdmin {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	orders, total, err := s.Orders.List(r.Context(), limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OrderList{Orders: orders, TotalCount: total})
}

func (s *Server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeInvalid(w, models.FormErrors{"status": "Неизвестный статус заказа"})
		return
	}

	order, err := s.Orders.UpdateStatus(r.Context(), pathID(r), req.Status)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.Log.Info().Int64("order_id", order.ID).Str("status", string(order.Status)).Msg("статус заказа изменен")
	writeJSON(w, http.StatusOK, order)
}
