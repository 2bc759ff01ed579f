package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shopoholic/internal/client"
	"shopoholic/internal/domain"
	"shopoholic/internal/models"
)

type fakeAccount struct {
	password string
	profile  domain.Profile
}

// fakeBackend - бэкенд магазина в памяти. Методы, которые тесты не трогают,
// достаются от встроенного nil-интерфейса и падают при вызове.
type fakeBackend struct {
	Backend

	mu          sync.Mutex
	accounts    map[string]fakeAccount
	tokens      map[string]domain.Profile
	products    []models.Product
	carts       map[int64]*models.Cart
	orders      []models.Order
	users       []models.User
	catalogDown bool
}

func newFakeBackend() *fakeBackend {
	customer := domain.Profile{ID: 1, Name: "Анна", Email: "anna@example.com", Role: domain.RoleUser}
	admin := domain.Profile{ID: 2, Name: "Администратор", Email: "admin@example.com", Role: domain.RoleAdmin}

	return &fakeBackend{
		accounts: map[string]fakeAccount{
			customer.Email: {password: "secret1", profile: customer},
			admin.Email:    {password: "secret2", profile: admin},
		},
		tokens: make(map[string]domain.Profile),
		products: []models.Product{
			{ID: 1, Name: "Чайник", Category: "Кухня", Price: 818, Stock: 5},
			{ID: 2, Name: "Кружка", Category: "Кухня", Price: 163.6, Stock: 0},
		},
		carts: make(map[int64]*models.Cart),
		users: []models.User{
			{ID: 1, Name: customer.Name, Email: customer.Email, Role: customer.Role},
			{ID: 2, Name: admin.Name, Email: admin.Email, Role: admin.Role},
		},
	}
}

// revokeAll - бэкенд забыл все токены, как после смены секрета
func (f *fakeBackend) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]domain.Profile)
}

func (f *fakeBackend) whoami(token string) (domain.Profile, error) {
	p, ok := f.tokens[token]
	if !ok {
		return domain.Profile{}, client.ErrUnauthorized
	}
	return p, nil
}

func (f *fakeBackend) admin(token string) error {
	p, err := f.whoami(token)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return client.ErrForbidden
	}
	return nil
}

func (f *fakeBackend) cartOf(userID int64) *models.Cart {
	c, ok := f.carts[userID]
	if !ok {
		c = &models.Cart{ID: userID, UserID: userID}
		f.carts[userID] = c
	}
	return c
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (string, domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return "", domain.Profile{}, client.ErrInvalidCredentials
	}
	token := uuid.NewString()
	f.tokens[token] = acc.profile
	return token, acc.profile, nil
}

func (f *fakeBackend) Products(_ context.Context, page, perPage int) (*models.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.catalogDown {
		return nil, errors.New("connection refused")
	}
	return &models.ProductList{Products: f.products, TotalCount: len(f.products)}, nil
}

func (f *fakeBackend) SearchProducts(_ context.Context, query string) (*models.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var found []models.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			found = append(found, p)
		}
	}
	return &models.ProductList{Products: found, TotalCount: len(found)}, nil
}

func (f *fakeBackend) Product(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeBackend) CreateProduct(_ context.Context, token string, in models.ProductInput) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.admin(token); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:          int64(len(f.products) + 1),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
	}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeBackend) Users(_ context.Context, token string, page, perPage int) (*models.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.admin(token); err != nil {
		return nil, err
	}
	return &models.UserList{Users: f.users, TotalCount: len(f.users)}, nil
}

func (f *fakeBackend) DeleteUser(_ context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return err
	}
	if p.ID == id {
		return &client.APIError{Status: http.StatusConflict, Message: "cannot delete yourself"}
	}
	return nil
}

func (f *fakeBackend) Cart(_ context.Context, token string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return nil, err
	}
	c := *f.cartOf(p.ID)
	return &c, nil
}

func (f *fakeBackend) AddToCart(_ context.Context, token string, productID int64, quantity int) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return nil, err
	}

	for i := range f.products {
		if f.products[i].ID != productID {
			continue
		}
		c := f.cartOf(p.ID)
		c.Items = append(c.Items, models.CartItem{
			ID:        int64(len(c.Items) + 1),
			ProductID: productID,
			Product:   &f.products[i],
			Quantity:  quantity,
			Price:     f.products[i].Price,
		})
		c.Recalculate()
		out := *c
		return &out, nil
	}
	return nil, client.ErrNotFound
}

func (f *fakeBackend) CreateOrder(_ context.Context, token string, in models.OrderInput) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return nil, err
	}
	c := f.cartOf(p.ID)
	if len(c.Items) == 0 {
		return nil, &client.APIError{Status: http.StatusBadRequest, Message: "cart is empty"}
	}

	o := models.Order{
		ID:             int64(len(f.orders) + 1),
		UserID:         p.ID,
		Customer:       in.Customer,
		PaymentMethod:  in.PaymentMethod,
		DeliveryMethod: in.DeliveryMethod,
		TotalAmount:    c.Total,
		Status:         models.OrderPending,
	}
	for _, item := range c.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	f.orders = append(f.orders, o)
	c.Items, c.Total = nil, 0
	return &o, nil
}

func (f *fakeBackend) Order(_ context.Context, token string, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return nil, err
	}
	for _, o := range f.orders {
		if o.ID == id && o.UserID == p.ID {
			return &o, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeBackend) Orders(_ context.Context, token string, page, perPage int) (*models.OrderList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.whoami(token)
	if err != nil {
		return nil, err
	}
	var mine []models.Order
	for _, o := range f.orders {
		if o.UserID == p.ID {
			mine = append(mine, o)
		}
	}
	return &models.OrderList{Orders: mine, TotalCount: len(mine)}, nil
}
