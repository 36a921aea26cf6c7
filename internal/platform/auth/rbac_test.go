package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		roles    []string
		required []string
		want     bool
	}{
		{"staff allowed for staff op", []string{RoleStaff}, []string{RoleAdmin, RoleStaff}, true},
		{"admin allowed for admin op", []string{RoleAdmin}, []string{RoleAdmin}, true},
		{"staff denied for admin op", []string{RoleStaff}, []string{RoleAdmin}, false},
		{"no roles denied", nil, []string{RoleAdmin, RoleStaff}, false},
		{"empty allow-list admits anyone", nil, nil, true},
		{"unknown role denied", []string{"NURSE"}, []string{RoleAdmin, RoleStaff}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.roles, tc.required); got != tc.want {
				t.Errorf("Authorize(%v, %v) = %v, want %v", tc.roles, tc.required, got, tc.want)
			}
		})
	}
}

func contextWithRoles(c echo.Context, roles []string) echo.Context {
	ctx := context.WithValue(c.Request().Context(), UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestRequireRole_Forbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := contextWithRoles(e.NewContext(req, rec), []string{RoleStaff})

	err := RequireRole(RoleAdmin)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 HTTPError, got %v", err)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := contextWithRoles(e.NewContext(req, rec), []string{RoleStaff})

	if err := RequireRole(RoleAdmin, RoleStaff)(okHandler)(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// A token that verified but carries no roles must yield 403, not 401.
func TestRequireRole_NoRolesIsForbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole(RoleAdmin, RoleStaff)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 HTTPError, got %v", err)
	}
}
