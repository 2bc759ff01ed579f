package domain

import "strings"

// Role - роль пользователя магазина
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid - известна ли роль
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole - разбор роли из формы; неизвестное значение дает false
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Profile - данные пользователя, которые клиент хранит вместе с токеном
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"` // "admin" или "user"
}

// IsAdmin - есть ли у профиля права администратора
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
