package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"shopoholic/internal/models"
)

const orderColumns = `id, user_id, customer, payment_method, delivery_method, comment, total_amount, status, created_at`

// OrderStore - заказы
type OrderStore struct {
	db *sql.DB
}

func NewOrders(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// CreateFromCart - оформление заказа из корзины пользователя; корзина очищается в той же транзакции
func (s *OrderStore) CreateFromCart(ctx context.Context, userID int64, in models.OrderInput) (*models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order: %w", err)
	}
	defer tx.Rollback()

	cart, err := loadCart(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	customer, err := json.Marshal(in.Customer)
	if err != nil {
		return nil, fmt.Errorf("encode customer: %w", err)
	}

	order := &models.Order{
		UserID:         userID,
		Customer:       in.Customer,
		PaymentMethod:  in.PaymentMethod,
		DeliveryMethod: in.DeliveryMethod,
		Comment:        in.Comment,
		TotalAmount:    cart.Total,
		Status:         models.OrderPending,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, customer, payment_method, delivery_method, comment, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, userID, customer, in.PaymentMethod, in.DeliveryMethod, in.Comment, cart.Total, string(order.Status),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, item := range cart.Items {
		oi := models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, oi.ProductID, oi.Name, oi.Quantity, oi.Price)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		order.Items = append(order.Items, oi)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// ListByUser - заказы покупателя, новые первыми
func (s *OrderStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := s.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// List - все заказы магазина для администратора
func (s *OrderStore) List(ctx context.Context, limit, offset int) ([]models.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := s.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	orders, err := s.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := expectOne(res, "update order status"); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// collect - чтение заказов и подгрузка их позиций одним запросом
func (s *OrderStore) collect(ctx context.Context, rows *sql.Rows) ([]models.Order, error) {
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}

	items, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var orderID int64
		var it models.OrderItem
		if err := items.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return orders, nil
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func scanOrder(r row) (*models.Order, error) {
	var o models.Order
	var customer []byte
	var status string
	err := r.Scan(&o.ID, &o.UserID, &customer, &o.PaymentMethod, &o.DeliveryMethod,
		&o.Comment, &o.TotalAmount, &status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	o.Status = models.OrderStatus(status)
	o.Items = []models.OrderItem{}
	return &o, nil
}
