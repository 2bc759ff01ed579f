// Package session хранит сессию клиента магазина: токен, выданный бэкендом,
// и закэшированный профиль пользователя с ролью.
package session

import (
	"encoding/json"
	"errors"

	"shopoholic/internal/domain"
)

// Ключи области хранилища; пишутся и удаляются только вместе.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	ErrEmptyToken  = errors.New("session: empty token")
	ErrInvalidRole = errors.New("session: invalid role")
)

// Snapshot - неизменяемый снимок сессии. Profile заполнен, только если IsAuthenticated.
type Snapshot struct {
	IsAuthenticated bool
	IsAdmin         bool
	Profile         domain.Profile
}

// Anonymous - снимок гостя.
func Anonymous() Snapshot {
	return Snapshot{}
}

func authenticated(p domain.Profile) Snapshot {
	return Snapshot{
		IsAuthenticated: true,
		IsAdmin:         p.IsAdmin(),
		Profile:         p,
	}
}

// decode восстанавливает сессию из сохраненных значений.
// Без токена сессия гостевая, что бы ни лежало в профиле; битый профиль тоже дает гостя.
func decode(items map[string]string) (string, Snapshot, error) {
	token := items[KeyToken]
	if token == "" {
		return "", Anonymous(), nil
	}

	raw, ok := items[KeyUser]
	if !ok {
		return "", Anonymous(), errors.New("session: token without profile")
	}

	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", Anonymous(), err
	}
	if !p.Role.Valid() {
		return "", Anonymous(), ErrInvalidRole
	}

	return token, authenticated(p), nil
}
