// Package client - REST клиент витрины к бэкенду магазина.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"shopoholic/internal/domain"
	"shopoholic/internal/models"
)

var (
	// ErrInvalidCredentials - вход отклонен; причина намеренно не уточняется
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	// ErrUnauthorized - бэкенд не принял токен сессии
	ErrUnauthorized = errors.New("требуется авторизация")
	ErrForbidden    = errors.New("доступ запрещен")
	ErrNotFound     = errors.New("не найдено")
)

// APIError - прочие ошибки бэкенда
type APIError struct {
	Status  int
	Message string
	Fields  models.FormErrors
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Client - клиент REST API магазина
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func New(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields models.FormErrors `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb)

		c.log.Debug().Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Str("error", eb.Error).Msg("backend error")

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusForbidden:
			return ErrForbidden
		case http.StatusNotFound:
			return ErrNotFound
		default:
			return &APIError{Status: resp.StatusCode, Message: eb.Error, Fields: eb.Fields}
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func pageQuery(page, perPage int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v.Encode()
}

// Login - вход; любой отказ бэкенда превращается в ErrInvalidCredentials
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.Profile, error) {
	var resp struct {
		Token string         `json:"token"`
		User  domain.Profile `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}

	err := c.do(ctx, http.MethodPost, "/auth/login", "", in, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return "", domain.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.Profile{}, err
	}
	if resp.Token == "" || !resp.User.Role.Valid() {
		return "", domain.Profile{}, fmt.Errorf("client: malformed login response")
	}
	return resp.Token, resp.User, nil
}

func (c *Client) Products(ctx context.Context, page, perPage int) (*models.ProductList, error) {
	var out models.ProductList
	if err := c.do(ctx, http.MethodGet, "/products?"+pageQuery(page, perPage), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string) (*models.ProductList, error) {
	var out models.ProductList
	if err := c.do(ctx, http.MethodGet, "/products?q="+url.QueryEscape(query), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/products", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+strconv.FormatInt(id, 10), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (c *Client) Users(ctx context.Context, token string, page, perPage int) (*models.UserList, error) {
	var out models.UserList
	if err := c.do(ctx, http.MethodGet, "/users?"+pageQuery(page, perPage), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) User(ctx context.Context, token string, id int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int64, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, "/users/"+strconv.FormatInt(id, 10), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (c *Client) Cart(ctx context.Context, token string) (*models.Cart, error) {
	var out models.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, token string, productID int64, quantity int) (*models.Cart, error) {
	var out models.Cart
	in := map[string]any{"product_id": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/items", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartItem - quantity <= 0 удаляет позицию
func (c *Client) UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*models.Cart, error) {
	var out models.Cart
	in := map[string]int{"quantity": quantity}
	if err := c.do(ctx, http.MethodPut, "/cart/items/"+strconv.FormatInt(itemID, 10), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, token string, itemID int64) (*models.Cart, error) {
	var out models.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/items/"+strconv.FormatInt(itemID, 10), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context, token string) (*models.Cart, error) {
	var out models.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, in models.OrderInput) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders - заказы текущего пользователя
func (c *Client) Orders(ctx context.Context, token string, page, perPage int) (*models.OrderList, error) {
	var out models.OrderList
	if err := c.do(ctx, http.MethodGet, "/orders?"+pageQuery(page, perPage), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllOrders - все заказы магазина, только для администратора
func (c *Client) AllOrders(ctx context.Context, token string, page, perPage int) (*models.OrderList, error) {
	var out models.OrderList
	if err := c.do(ctx, http.MethodGet, "/admin/orders?"+pageQuery(page, perPage), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, token string, id int64) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	in := map[string]models.OrderStatus{"status": status}
	path := "/orders/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.do(ctx, http.MethodPut, path, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
