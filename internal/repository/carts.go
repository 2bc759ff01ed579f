package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shopoholic/internal/models"
)

// CartStore - корзины покупателей, по одной на пользователя
type CartStore struct {
	db *sql.DB
}

func NewCarts(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Get - корзина пользователя с текущими ценами товаров
func (s *CartStore) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	return loadCart(ctx, s.db, userID, false)
}

// Add - добавление товара; если он уже в корзине, количество складывается
func (s *CartStore) Add(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, userID, productID, quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return s.Get(ctx, userID)
}

// SetQuantity - новое количество позиции; ноль и меньше удаляют ее
func (s *CartStore) SetQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, itemID)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`,
		itemID, userID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if err := expectOne(res, "update cart item"); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartStore) Remove(ctx context.Context, userID, itemID int64) (*models.Cart, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	if err := expectOne(res, "remove cart item"); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartStore) Clear(ctx context.Context, userID int64) (*models.Cart, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return &models.Cart{ID: userID, UserID: userID, Items: []models.CartItem{}}, nil
}

func loadCart(ctx context.Context, q queryer, userID int64, lock bool) (*models.Cart, error) {
	query := `
		SELECT ci.id, ci.quantity,
		       p.id, p.name, p.description, p.category, p.price, p.stock, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.id
	`
	if lock {
		query += ` FOR UPDATE OF ci`
	}

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	cart := &models.Cart{ID: userID, UserID: userID, Items: []models.CartItem{}}
	for rows.Next() {
		var item models.CartItem
		var p models.Product
		err := rows.Scan(&item.ID, &item.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.ProductID = p.ID
		item.Price = p.Price
		item.Product = &p
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart.Recalculate()
	return cart, nil
}
