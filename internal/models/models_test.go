package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopoholic/internal/domain"
)

func TestCartTotals(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: 1, Quantity: 2, Price: 8500},
		{ProductID: 2, Quantity: 1, Price: 7200},
	}}
	c.Recalculate()

	assert.Equal(t, 24200.0, c.Total)
	assert.Equal(t, 3, c.Count())
	assert.Zero(t, Cart{}.Count())
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("completed").Valid())
	assert.Equal(t, "Отменен", OrderCancelled.Label())
	assert.Equal(t, "Неизвестно", OrderStatus("lost").Label())
}

func TestPagination(t *testing.T) {
	p := Pagination{Page: 1, PerPage: 10, TotalCount: 21}
	assert.Equal(t, 3, p.TotalPages())
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p.Page = 3
	assert.False(t, p.HasNext())
	assert.Equal(t, 2, p.Prev())

	assert.Equal(t, 1, Pagination{PerPage: 10}.TotalPages())
}

func TestUserProfile(t *testing.T) {
	u := User{ID: 7, Name: "Анна", Email: "anna@example.com", PasswordHash: "x", Role: domain.RoleAdmin}
	assert.Equal(t, domain.Profile{ID: 7, Name: "Анна", Email: "anna@example.com", Role: domain.RoleAdmin}, u.Profile())
}
