package models

import (
	"time"

	"shopoholic/internal/domain"
)

type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	PasswordHash string      `json:"-"`    // Не отдаем хэш пароля в JSON
	Role         domain.Role `json:"role"` // "admin" или "user"
	CreatedAt    time.Time   `json:"created_at"`
}

// Profile - то, что клиент хранит в сессии
func (u User) Profile() domain.Profile {
	return domain.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updated_date"`
}

type CartItem struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
}

type Cart struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"user_id"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
}

// Count - сколько единиц товара в корзине
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Recalculate - пересчет общей суммы
func (c *Cart) Recalculate() {
	c.Total = 0
	for _, item := range c.Items {
		c.Total += item.Price * float64(item.Quantity)
	}
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses - все статусы в порядке жизненного цикла
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label - подпись статуса для покупателя
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "В обработке"
	case OrderProcessing:
		return "Комплектуется"
	case OrderShipped:
		return "Отправлен"
	case OrderDelivered:
		return "Доставлен"
	case OrderCancelled:
		return "Отменен"
	default:
		return "Неизвестно"
	}
}

const (
	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"
	PaymentCard     = "card"
	PaymentCash     = "cash"
)

type CustomerInfo struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Customer       CustomerInfo `json:"customer_info"`
	PaymentMethod  string       `json:"payment_method"`
	DeliveryMethod string       `json:"delivery_method"`
	Comment        string       `json:"comment,omitempty"`
	Items          []OrderItem  `json:"items"`
	TotalAmount    float64      `json:"total_amount"`
	Status         OrderStatus  `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// OrderInput - данные формы оформления заказа
type OrderInput struct {
	Customer       CustomerInfo `json:"customer_info"`
	PaymentMethod  string       `json:"payment_method"`
	DeliveryMethod string       `json:"delivery_method"`
	Comment        string       `json:"comment,omitempty"`
}

// ProductInput - данные формы товара
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// UserInput - данные формы пользователя; пустой пароль при редактировании не меняет его
type UserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone,omitempty"`
	Password string      `json:"password,omitempty"`
	Role     domain.Role `json:"role"`
}

type ProductList struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
}

type UserList struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
}

type OrderList struct {
	Orders     []Order `json:"orders"`
	TotalCount int     `json:"total_count"`
}

// Pagination - данные для переключателя страниц
type Pagination struct {
	Page       int
	PerPage    int
	TotalCount int
}

// TotalPages - число страниц, минимум одна
func (p Pagination) TotalPages() int {
	if p.PerPage <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.PerPage - 1) / p.PerPage
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pagination) Prev() int     { return p.Page - 1 }
func (p Pagination) Next() int     { return p.Page + 1 }

// PageData - данные для передачи в HTML шаблоны
type PageData struct {
	Title       string
	CurrentPage string
	Path        string

	// шапка
	IsLoggedIn bool
	IsAdmin    bool
	Profile    domain.Profile
	CartCount  int
	Currency   string
	Today      time.Time
	Rate       float64

	Products   []Product
	Product    *Product
	Users      []User
	User       *User
	Orders     []Order
	Order      *Order
	Cart       *Cart
	Pagination Pagination
	Query      string

	Form       map[string]string
	FormErrors map[string]string
	Error      string // общая ошибка формы или страницы
	Success    string
	ReturnTo   string
}
