package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"shopoholic/internal/guard"
)

// Requirements - единая таблица требований к представлениям витрины.
// Все, чего здесь нет, публично.
func Requirements() guard.Table {
	return guard.Table{
		"/":                     guard.Public,
		"/login":                guard.Public,
		"/logout":               guard.Public,
		"/currency":             guard.Public,
		"/session/events":       guard.Public,
		"/cart":                 guard.Authenticated,
		"/cart/*":               guard.Authenticated,
		"/checkout":             guard.Authenticated,
		"/order-confirmation/*": guard.Authenticated,
		"/orders":               guard.Authenticated,
		"/admin":                guard.Admin,
		"/admin/*":              guard.Admin,
	}
}

// Routes регистрирует страницы витрины за mw (guard.Middleware). Им же обернута
// страница 404, чтобы шапка знала о сессии. Живые события вкладок идут мимо
// guard: к ним подключается только уже представившийся браузер.
func (h *Handler) Routes(r *mux.Router, mw mux.MiddlewareFunc) {
	r.HandleFunc("/session/events", h.SessionEventsHandler).Methods(http.MethodGet)

	p := r.NewRoute().Subrouter()
	p.Use(mw)

	p.HandleFunc("/", h.HomeHandler).Methods(http.MethodGet)
	p.HandleFunc("/login", h.LoginHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/logout", h.LogoutHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/currency", h.CurrencyHandler).Methods(http.MethodPost)

	p.HandleFunc("/cart", h.CartHandler).Methods(http.MethodGet)
	p.HandleFunc("/cart/add", h.AddToCartHandler).Methods(http.MethodPost)
	p.HandleFunc("/cart/clear", h.ClearCartHandler).Methods(http.MethodPost)
	p.HandleFunc("/cart/items/{id:[0-9]+}", h.UpdateCartItemHandler).Methods(http.MethodPost)
	p.HandleFunc("/cart/items/{id:[0-9]+}/remove", h.RemoveCartItemHandler).Methods(http.MethodPost)

	p.HandleFunc("/checkout", h.CheckoutHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/order-confirmation/{id:[0-9]+}", h.OrderConfirmationHandler).Methods(http.MethodGet)
	p.HandleFunc("/orders", h.OrdersHandler).Methods(http.MethodGet)

	p.HandleFunc("/admin", h.AdminDashboardHandler).Methods(http.MethodGet)
	p.HandleFunc("/admin/products", h.AdminProductsHandler).Methods(http.MethodGet)
	p.HandleFunc("/admin/products/add", h.AdminNewProductHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/admin/products/edit/{id:[0-9]+}", h.AdminEditProductHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/admin/products/delete/{id:[0-9]+}", h.AdminDeleteProductHandler).Methods(http.MethodPost)
	p.HandleFunc("/admin/users", h.AdminUsersHandler).Methods(http.MethodGet)
	p.HandleFunc("/admin/users/add", h.AdminNewUserHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/admin/users/edit/{id:[0-9]+}", h.AdminEditUserHandler).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/admin/users/delete/{id:[0-9]+}", h.AdminDeleteUserHandler).Methods(http.MethodPost)
	p.HandleFunc("/admin/orders", h.AdminOrdersHandler).Methods(http.MethodGet)
	p.HandleFunc("/admin/orders/{id:[0-9]+}/status", h.AdminOrderStatusHandler).Methods(http.MethodPost)

	r.NotFoundHandler = mw(http.HandlerFunc(h.NotFound))
}
