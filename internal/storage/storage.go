// Package storage хранит сохраняемое состояние браузера: небольшую область
// ключ/значение на каждый профиль браузера и поток событий об ее изменении.
//
// Область ведет себя как localStorage: запись видна всем вкладкам (дескрипторам)
// той же области, а событие об изменении получают все дескрипторы, кроме автора записи.
package storage

import (
	"context"
	"errors"
)

// ErrUnavailable оборачивает отказ драйвера хранилища.
var ErrUnavailable = errors.New("storage: unavailable")

// Change - событие изменения области. Значений не несет: получатель перечитывает область сам.
type Change struct {
	Keys   []string `json:"keys"`
	Origin string   `json:"origin"`
}

// Area - дескриптор области ключ/значение одного профиля браузера.
type Area interface {
	// ID - идентификатор дескриптора; попадает в Change.Origin его записей.
	ID() string
	Get(ctx context.Context, key string) (string, bool, error)
	// GetItems читает несколько ключей одним снимком; отсутствующих ключей в ответе нет.
	GetItems(ctx context.Context, keys ...string) (map[string]string, error)
	// SetItems записывает все пары разом: другие дескрипторы не увидят половину записи.
	SetItems(ctx context.Context, items map[string]string) error
	// RemoveItems удаляет ключи; отсутствующие ключи не считаются ошибкой.
	RemoveItems(ctx context.Context, keys ...string) error
	// Changes подписывает на изменения, сделанные другими дескрипторами.
	// Канал закрывается, когда завершается ctx.
	Changes(ctx context.Context) (<-chan Change, error)
}

// Backend выдает дескрипторы областей по идентификатору профиля браузера.
type Backend interface {
	Area(scope string) Area
}
