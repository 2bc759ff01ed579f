package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopoholic/internal/domain"
	"shopoholic/internal/session"
)

var (
	guest    = session.Anonymous()
	customer = session.Snapshot{IsAuthenticated: true, Profile: domain.Profile{ID: 2, Role: domain.RoleUser}}
	admin    = session.Snapshot{IsAuthenticated: true, IsAdmin: true, Profile: domain.Profile{ID: 1, Role: domain.RoleAdmin}}
)

func TestEvaluate(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		ready    bool
		snap     session.Snapshot
		req      Requirement
		path     string
		expected Decision
	}{
		{
			name:     "public view for guest",
			ready:    true,
			snap:     guest,
			req:      Public,
			path:     "/",
			expected: Decision{Outcome: Allowed},
		},
		{
			name:     "public view while session is loading",
			snap:     guest,
			req:      Public,
			path:     "/",
			expected: Decision{Outcome: Allowed},
		},
		{
			name:     "guest on checkout is sent to login with return path",
			ready:    true,
			snap:     guest,
			req:      Authenticated,
			path:     "/checkout",
			expected: Decision{Outcome: RedirectToLogin, Location: "/login?from=%2Fcheckout", ReturnPath: "/checkout"},
		},
		{
			name:     "customer on admin view goes to default",
			ready:    true,
			snap:     customer,
			req:      Admin,
			path:     "/admin/products",
			expected: Decision{Outcome: RedirectToDefault, Location: "/"},
		},
		{
			name:     "admin on admin view",
			ready:    true,
			snap:     admin,
			req:      Admin,
			path:     "/admin/products",
			expected: Decision{Outcome: Allowed},
		},
		{
			name:     "customer on authenticated view",
			ready:    true,
			snap:     customer,
			req:      Authenticated,
			path:     "/orders",
			expected: Decision{Outcome: Allowed},
		},
		{
			name:     "guest on admin view is sent to login, not default",
			ready:    true,
			snap:     guest,
			req:      Admin,
			path:     "/admin/users",
			expected: Decision{Outcome: RedirectToLogin, Location: "/login?from=%2Fadmin%2Fusers", ReturnPath: "/admin/users"},
		},
		{
			name:     "protected view before the session is loaded",
			snap:     guest,
			req:      Authenticated,
			path:     "/checkout",
			expected: Decision{Outcome: Pending},
		},
		{
			name:     "admin view before the session is loaded",
			snap:     admin,
			req:      Admin,
			path:     "/admin",
			expected: Decision{Outcome: Pending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Evaluate(tt.ready, tt.snap, tt.req, tt.path))
		})
	}
}

func TestReturnTarget(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		stored   string
		expected string
	}{
		{"/order-confirmation/42", "/order-confirmation/42"},
		{"/orders?page=2", "/orders?page=2"},
		{"/cart", "/"},
		{"/cart/", "/"},
		{"/cart?step=1", "/"},
		{"/cart/items/3/remove", "/"},
		{"/cartography", "/cartography"},
		{"", "/"},
		{"/login", "/"},
		{"/login?from=/checkout", "/"},
		{"//evil.example.com/x", "/"},
		{`/\evil.example.com`, "/"},
		{"https://evil.example.com/", "/"},
		{"checkout", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ReturnTarget(tt.stored))
		})
	}
}

func TestNoReturnIsConfigurable(t *testing.T) {
	p := DefaultPolicy()
	p.NoReturn = []string{"/checkout"}

	assert.Equal(t, "/cart", p.ReturnTarget("/cart"))
	assert.Equal(t, "/", p.ReturnTarget("/checkout"))
}

func TestLoginLocation(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, "/login", p.LoginLocation(""))
	assert.Equal(t, "/login?from=%2Forders%3Fpage%3D2", p.LoginLocation("/orders?page=2"))
}

func TestTableRequirement(t *testing.T) {
	table := Table{
		"/checkout":             Authenticated,
		"/order-confirmation/*": Authenticated,
		"/admin":                Admin,
		"/admin/*":              Admin,
		"/cart":                 Authenticated,
		"/cart/*":               Authenticated,
	}

	assert.Equal(t, Public, table.Requirement("/"))
	assert.Equal(t, Public, table.Requirement("/login"))
	assert.Equal(t, Public, table.Requirement("/checkoutx"))
	assert.Equal(t, Authenticated, table.Requirement("/checkout"))
	assert.Equal(t, Authenticated, table.Requirement("/checkout/"))
	assert.Equal(t, Authenticated, table.Requirement("/order-confirmation/42"))
	assert.Equal(t, Public, table.Requirement("/order-confirmation"))
	assert.Equal(t, Admin, table.Requirement("/admin"))
	assert.Equal(t, Admin, table.Requirement("/admin/products/edit/3"))
	assert.Equal(t, Admin, table.Requirement("/admin/../admin/users"))
	assert.Equal(t, Authenticated, table.Requirement("/cart/items/1/remove"))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "authenticated+admin", Admin.String())
	assert.Equal(t, "redirect_to_login", RedirectToLogin.String())
	assert.Equal(t, "pending", Pending.String())
}
