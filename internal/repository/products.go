package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopoholic/internal/models"
)

const productColumns = `id, name, description, category, price, stock, updated_at`

// ProductStore - каталог товаров
type ProductStore struct {
	db *sql.DB
}

func NewProducts(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// List - страница каталога и общее число товаров
func (s *ProductStore) List(ctx context.Context, limit, offset int) ([]models.Product, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search - товары, в названии которых есть подстрока, без учета регистра
func (s *ProductStore) Search(ctx context.Context, query string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE strpos(lower(name), lower($1)) > 0
		ORDER BY id
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return scanProducts(rows)
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, category, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		in.Name, in.Description, in.Category, in.Price, in.Stock))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update - изменение товара, дата обновления выставляется заново
func (s *ProductStore) Update(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, stock = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, in.Name, in.Description, in.Category, in.Price, in.Stock))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOne(res, "delete product")
}

func scanProduct(r row) (*models.Product, error) {
	var p models.Product
	if err := r.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return products, nil
}
