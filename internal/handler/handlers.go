package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"shopoholic/internal/client"
	"shopoholic/internal/domain"
	"shopoholic/internal/guard"
	"shopoholic/internal/metrics"
	"shopoholic/internal/models"
	"shopoholic/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PerPage - размер страницы каталога, заказов и админских списков
const PerPage = 10

// MaxPage - дальше страниц не бывает; большие номера обрезаются
const MaxPage = 1_000_000

// CurrencyCookie - выбранная валюта отображения цен
const CurrencyCookie = "sf_currency"

// Backend - операции бэкенда, которые нужны витрине
type Backend interface {
	Login(ctx context.Context, email, password string) (string, domain.Profile, error)
	Products(ctx context.Context, page, perPage int) (*models.ProductList, error)
	SearchProducts(ctx context.Context, query string) (*models.ProductList, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, token string, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, token string, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, token string, id int64) error
	Users(ctx context.Context, token string, page, perPage int) (*models.UserList, error)
	User(ctx context.Context, token string, id int64) (*models.User, error)
	CreateUser(ctx context.Context, token string, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, token string, id int64, in models.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
	Cart(ctx context.Context, token string) (*models.Cart, error)
	AddToCart(ctx context.Context, token string, productID int64, quantity int) (*models.Cart, error)
	UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, token string, itemID int64) (*models.Cart, error)
	ClearCart(ctx context.Context, token string) (*models.Cart, error)
	CreateOrder(ctx context.Context, token string, in models.OrderInput) (*models.Order, error)
	Orders(ctx context.Context, token string, page, perPage int) (*models.OrderList, error)
	AllOrders(ctx context.Context, token string, page, perPage int) (*models.OrderList, error)
	Order(ctx context.Context, token string, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id int64, status models.OrderStatus) (*models.Order, error)
}

// TabResolver находит Store браузера для живой вкладки
type TabResolver interface {
	Existing(r *http.Request) (*session.Store, func(), bool)
}

// Handler содержит зависимости витрины
type Handler struct {
	API      Backend
	Tmpl     *template.Template
	Policy   guard.Policy
	Tabs     TabResolver
	Log      zerolog.Logger
	Upgrader websocket.Upgrader
	now      func() time.Time
}

// NewHandler создает новый экземпляр Handler
func NewHandler(api Backend, policy guard.Policy, tabs TabResolver, log zerolog.Logger) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	log.Debug().Int("templates", len(tmpl.Templates())).Msg("шаблоны загружены")

	return &Handler{
		API:    api,
		Tmpl:   tmpl,
		Policy: policy,
		Tabs:   tabs,
		Log:    log,
		now:    time.Now,
	}, nil
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatPrice": domain.FormatPrice,
		"formatDate":  domain.FormatDate,
		"orderStatuses": func() []models.OrderStatus {
			return models.OrderStatuses
		},
		"mul": func(price float64, qty int) float64 {
			return price * float64(qty)
		},
	}

	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}

// setEncoding устанавливает правильную кодировку
func (h *Handler) setEncoding(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// store - Store браузера, положенный guard.Middleware
func (h *Handler) store(r *http.Request) *session.Store {
	st, _ := guard.StoreFrom(r.Context())
	return st
}

// page - общие данные шапки для любой страницы
func (h *Handler) page(r *http.Request, title, current string) models.PageData {
	return h.pageWithCart(r, title, current, nil)
}

// pageWithCart - то же, но с уже полученной корзиной
func (h *Handler) pageWithCart(r *http.Request, title, current string, cart *models.Cart) models.PageData {
	data := models.PageData{
		Title:       title,
		CurrentPage: current,
		Path:        r.URL.RequestURI(),
		Currency:    currency(r),
		Today:       h.now(),
		Rate:        domain.ExchangeRate,
	}

	st := h.store(r)
	if st == nil {
		return data
	}

	snap := st.Current()
	data.IsLoggedIn = snap.IsAuthenticated
	data.IsAdmin = snap.IsAdmin
	data.Profile = snap.Profile

	if cart != nil {
		data.Cart = cart
		data.CartCount = cart.Count()
		return data
	}

	if snap.IsAuthenticated {
		cart, err := h.API.Cart(r.Context(), st.Token())
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			h.forceLogout(r, st)
			data.IsLoggedIn, data.IsAdmin, data.Profile = false, false, domain.Profile{}
		case err != nil:
			h.Log.Debug().Err(err).Msg("не удалось получить корзину для шапки")
		default:
			data.CartCount = cart.Count()
		}
	}

	return data
}

func (h *Handler) render(w http.ResponseWriter, status int, data models.PageData) {
	h.setEncoding(w)
	w.WriteHeader(status)
	if err := h.Tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.Log.Error().Err(err).Str("page", data.CurrentPage).Msg("ошибка выполнения шаблона")
	}
}

// forceLogout - бэкенд не принял токен: сессия очищается во всех вкладках браузера
func (h *Handler) forceLogout(r *http.Request, st *session.Store) {
	metrics.ForcedLogouts.Inc()
	if err := st.Clear(r.Context()); err != nil {
		h.Log.Warn().Err(err).Msg("сессия очищена только в памяти")
	}
	h.Log.Info().Str("path", r.URL.Path).Msg("токен отклонен бэкендом, выход")
}

// fail - общая реакция на ошибку бэкенда
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if st := h.store(r); st != nil {
			h.forceLogout(r, st)
		}
		http.Redirect(w, r, h.Policy.LoginLocation(returnPath(r)), http.StatusSeeOther)
	case errors.Is(err, client.ErrForbidden):
		http.Redirect(w, r, h.Policy.DefaultPath, http.StatusSeeOther)
	case errors.Is(err, client.ErrNotFound):
		h.NotFound(w, r)
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("ошибка бэкенда")
		data := h.page(r, "Ошибка", "error")
		data.Error = "Сервис временно недоступен. Пожалуйста, попробуйте позже."
		h.render(w, http.StatusBadGateway, data)
	}
}

// NotFound - страница 404
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Страница не найдена", "not_found")
	h.render(w, http.StatusNotFound, data)
}

// Loading - заглушка, пока сессия не прочитана
func (h *Handler) Loading(w http.ResponseWriter, r *http.Request) {
	data := models.PageData{Title: "Загрузка", CurrentPage: "loading", Path: r.URL.RequestURI(), Currency: currency(r)}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "1")
	h.render(w, http.StatusServiceUnavailable, data)
}

func returnPath(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return ""
	}
	return r.URL.RequestURI()
}

func currency(r *http.Request) string {
	if c, err := r.Cookie(CurrencyCookie); err == nil && c.Value == domain.CurrencyUSD {
		return domain.CurrencyUSD
	}
	return domain.CurrencyRUB
}

// localPath - путь внутри витрины или fallback
func localPath(s, fallback string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, `/\`) {
		return fallback
	}
	return s
}

func varID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func pageNumber(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

// formValues - копия полей формы для повторного показа
func formValues(r *http.Request, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = strings.TrimSpace(r.FormValue(k))
	}
	return out
}

// apiFieldErrors - ошибки валидации, пришедшие от бэкенда
func apiFieldErrors(err error) (models.FormErrors, bool) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return apiErr.Fields, true
	}
	return nil, false
}

func isConflict(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}
