package rbac

import (
	"net/http"
	"testing"

	"gridstock/infrastructure/cache"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/tasker/api/products/*/move", path: "/tasker/api/products/1/move", ok: true},
		{pattern: "/tasker/orders/*", path: "/tasker/orders/ORD-20260101-101010-ABCDEF12.pdf", ok: true},
		{pattern: "/tasker/exports/*", path: "/tasker/exports/products.csv", ok: true},
		{pattern: "/tasker/products", path: "/tasker/products", ok: true},
		{pattern: "/tasker/products", path: "/tasker/products/1", ok: false},
		{pattern: "/tasker/api/products/*/move", path: "/tasker/api/products/1/assign", ok: false},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestAllowsStaffOnlyRegisteredRoutes(t *testing.T) {
	r := New(cache.NewRbacRolesCache())
	r.Add(RoleStaff, "WITHDRAW", http.MethodPost, "/tasker/api/withdraw")

	staff := []string{RoleStaff}
	if !r.Allows(staff, "/tasker/api/withdraw", "post") {
		t.Fatalf("expected staff to withdraw")
	}
	if r.Allows(staff, "/tasker/api/grid/rows/remove", http.MethodPost) {
		t.Fatalf("expected staff to be denied grid maintenance")
	}
	if !r.Allows([]string{RoleAdmin}, "/tasker/api/grid/rows/remove", http.MethodPost) {
		t.Fatalf("expected admin to bypass checks")
	}
	if r.Allows(nil, "/tasker/api/withdraw", http.MethodPost) {
		t.Fatalf("expected no roles to be denied")
	}
}

func TestIsKnownRole(t *testing.T) {
	if !IsKnownRole("staff") || !IsKnownRole("admin") || IsKnownRole("scanner") {
		t.Fatalf("unexpected role set %v", Roles)
	}
}
