package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shopoholic/config"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	phone         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('user', 'admin')),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	price       NUMERIC(12, 2) NOT NULL CHECK (price > 0),
	stock       INTEGER NOT NULL CHECK (stock >= 0),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	product_id BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	UNIQUE (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id              BIGSERIAL PRIMARY KEY,
	user_id         BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	customer        JSONB NOT NULL,
	payment_method  TEXT NOT NULL,
	delivery_method TEXT NOT NULL,
	comment         TEXT NOT NULL DEFAULT '',
	total_amount    NUMERIC(12, 2) NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	order_id   BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
	product_id BIGINT NOT NULL,
	name       TEXT NOT NULL,
	quantity   INTEGER NOT NULL,
	price      NUMERIC(12, 2) NOT NULL
);
`

// Connect - подключение к PostgreSQL с проверкой соединения
func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить подключение: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("подключение к PostgreSQL установлено")
	return db, nil
}

// Migrate - создание схемы, если ее еще нет
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("не удалось создать схему: %w", err)
	}
	return nil
}

// SeedAdmin - создание главного администратора, если его нет
func SeedAdmin(ctx context.Context, db *sql.DB, admin config.AdminConfig, passwordHash string) (bool, error) {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", admin.Email).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("не удалось проверить администратора: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, 'admin')`,
		admin.Name, admin.Email, passwordHash,
	)
	if err != nil {
		return false, fmt.Errorf("не удалось создать администратора: %w", err)
	}
	return true, nil
}

// Close - закрытие соединения
func Close(db *sql.DB, log zerolog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("ошибка при закрытии базы данных")
		return
	}
	log.Info().Msg("подключение к базе данных закрыто")
}
