package api

import (
	"context"
	"strings"
	"time"

	"shopoholic/internal/models"
	"shopoholic/internal/repository"
)

type fakeUsers struct {
	byID   map[int64]*models.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*models.User{}}
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]models.User, int, error) {
	all := []models.User{}
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.byID[id]; ok {
			all = append(all, *u)
		}
	}
	return window(all, limit, offset), len(all), nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	if _, err := f.FindByEmail(context.Background(), u.Email); err == nil {
		return repository.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	cur, ok := f.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Email, cur.Phone, cur.Role = u.Name, u.Email, u.Phone, u.Role
	if u.PasswordHash != "" {
		cur.PasswordHash = u.PasswordHash
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeProducts struct {
	items []models.Product
}

func (f *fakeProducts) List(_ context.Context, limit, offset int) ([]models.Product, int, error) {
	return window(f.items, limit, offset), len(f.items), nil
}

func (f *fakeProducts) Search(_ context.Context, q string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.items {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id int64) (*models.Product, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	p := models.Product{
		ID: int64(len(f.items) + 1), Name: in.Name, Description: in.Description,
		Category: in.Category, Price: in.Price, Stock: in.Stock, UpdatedAt: time.Now(),
	}
	f.items = append(f.items, p)
	return &p, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Name, f.items[i].Price, f.items[i].Stock = in.Name, in.Price, in.Stock
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeCarts struct {
	products *fakeProducts
	carts    map[int64]*models.Cart
	nextItem int64
}

func (f *fakeCarts) cart(userID int64) *models.Cart {
	c, ok := f.carts[userID]
	if !ok {
		c = &models.Cart{ID: userID, UserID: userID, Items: []models.CartItem{}}
		f.carts[userID] = c
	}
	return c
}

func (f *fakeCarts) Get(_ context.Context, userID int64) (*models.Cart, error) {
	c := *f.cart(userID)
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c, nil
}

func (f *fakeCarts) Add(ctx context.Context, userID, productID int64, qty int) (*models.Cart, error) {
	p, err := f.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	c := f.cart(userID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return f.Get(ctx, userID)
		}
	}
	f.nextItem++
	c.Items = append(c.Items, models.CartItem{ID: f.nextItem, ProductID: productID, Product: p, Quantity: qty, Price: p.Price})
	return f.Get(ctx, userID)
}

func (f *fakeCarts) SetQuantity(ctx context.Context, userID, itemID int64, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return f.Remove(ctx, userID, itemID)
	}
	c := f.cart(userID)
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = qty
			return f.Get(ctx, userID)
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCarts) Remove(ctx context.Context, userID, itemID int64) (*models.Cart, error) {
	c := f.cart(userID)
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return f.Get(ctx, userID)
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCarts) Clear(ctx context.Context, userID int64) (*models.Cart, error) {
	f.cart(userID).Items = []models.CartItem{}
	return f.Get(ctx, userID)
}

type fakeOrders struct {
	carts  *fakeCarts
	orders []models.Order
}

func (f *fakeOrders) CreateFromCart(ctx context.Context, userID int64, in models.OrderInput) (*models.Order, error) {
	c, _ := f.carts.Get(ctx, userID)
	if len(c.Items) == 0 {
		return nil, repository.ErrEmptyCart
	}
	c.Recalculate()

	o := models.Order{
		ID: int64(len(f.orders) + 1), UserID: userID, Customer: in.Customer,
		PaymentMethod: in.PaymentMethod, DeliveryMethod: in.DeliveryMethod,
		TotalAmount: c.Total, Status: models.OrderPending, CreatedAt: time.Now(),
	}
	for _, it := range c.Items {
		o.Items = append(o.Items, models.OrderItem{ProductID: it.ProductID, Name: it.Product.Name, Quantity: it.Quantity, Price: it.Price})
	}
	f.orders = append(f.orders, o)
	_, _ = f.carts.Clear(ctx, userID)
	return &o, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID int64, limit, offset int) ([]models.Order, int, error) {
	own := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			own = append(own, o)
		}
	}
	return window(own, limit, offset), len(own), nil
}

func (f *fakeOrders) List(_ context.Context, limit, offset int) ([]models.Order, int, error) {
	return window(f.orders, limit, offset), len(f.orders), nil
}

func (f *fakeOrders) FindByID(_ context.Context, id int64) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return f.FindByID(ctx, id)
		}
	}
	return nil, repository.ErrNotFound
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
