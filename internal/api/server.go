// Package api - REST бэкенд магазина: вход, каталог, пользователи, корзина, заказы.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"shopoholic/internal/auth"
	"shopoholic/internal/models"
	"shopoholic/internal/repository"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	// maxPage держит OFFSET в пределах int даже при максимальном per_page
	maxPage = 1_000_000
)

// Users - хранилище пользователей
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
}

// Products - каталог товаров
type Products interface {
	List(ctx context.Context, limit, offset int) ([]models.Product, int, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Carts - корзины покупателей
type Carts interface {
	Get(ctx context.Context, userID int64) (*models.Cart, error)
	Add(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, userID, itemID int64) (*models.Cart, error)
	Clear(ctx context.Context, userID int64) (*models.Cart, error)
}

// Orders - заказы
type Orders interface {
	CreateFromCart(ctx context.Context, userID int64, in models.OrderInput) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, int, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, int, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
}

// Server содержит зависимости API
type Server struct {
	Users    Users
	Products Products
	Carts    Carts
	Orders   Orders
	Tokens   *auth.TokenManager
	Log      zerolog.Logger
}

// Routes регистрирует маршруты API на роутере
func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/auth/login", s.Login).Methods(http.MethodPost)

	r.HandleFunc("/products", s.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", s.GetProduct).Methods(http.MethodGet)

	private := func(h http.HandlerFunc) http.Handler { return s.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return s.RequireAuth(s.RequireAdmin(h)) }

	r.Handle("/cart", private(s.GetCart)).Methods(http.MethodGet)
	r.Handle("/cart", private(s.ClearCart)).Methods(http.MethodDelete)
	r.Handle("/cart/items", private(s.AddToCart)).Methods(http.MethodPost)
	r.Handle("/cart/items/{id:[0-9]+}", private(s.UpdateCartItem)).Methods(http.MethodPut)
	r.Handle("/cart/items/{id:[0-9]+}", private(s.RemoveFromCart)).Methods(http.MethodDelete)
	r.Handle("/orders", private(s.CreateOrder)).Methods(http.MethodPost)
	r.Handle("/orders", private(s.ListOwnOrders)).Methods(http.MethodGet)
	r.Handle("/orders/{id:[0-9]+}", private(s.GetOrder)).Methods(http.MethodGet)

	r.Handle("/products", admin(s.CreateProduct)).Methods(http.MethodPost)
	r.Handle("/products/{id:[0-9]+}", admin(s.UpdateProduct)).Methods(http.MethodPut)
	r.Handle("/products/{id:[0-9]+}", admin(s.DeleteProduct)).Methods(http.MethodDelete)
	r.Handle("/users", admin(s.ListUsers)).Methods(http.MethodGet)
	r.Handle("/users", admin(s.CreateUser)).Methods(http.MethodPost)
	r.Handle("/users/{id:[0-9]+}", admin(s.GetUser)).Methods(http.MethodGet)
	r.Handle("/users/{id:[0-9]+}", admin(s.UpdateUser)).Methods(http.MethodPut)
	r.Handle("/users/{id:[0-9]+}", admin(s.DeleteUser)).Methods(http.MethodDelete)
	r.Handle("/admin/orders", admin(s.ListAllOrders)).Methods(http.MethodGet)
	r.Handle("/orders/{id:[0-9]+}/status", admin(s.UpdateOrderStatus)).Methods(http.MethodPut)
}

// Handler - готовый роутер API
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Routes(r)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields models.FormErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeInvalid(w http.ResponseWriter, errs models.FormErrors) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: errs})
}

// writeStoreError переводит ошибки хранилища в HTTP статусы
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, repository.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	default:
		s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("store error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// pageParams - page и per_page из запроса с ограничениями
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return perPage, (page - 1) * perPage
}
