package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := BearerToken(tc.header); got != tc.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestTokenMiddleware_MissingHeader(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := TokenMiddleware(svc)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 HTTPError, got %v", err)
	}
}

func TestTokenMiddleware_InvalidToken(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := TokenMiddleware(svc)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 HTTPError, got %v", err)
	}
}

func TestTokenMiddleware_StoresIdentity(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	token, _ := svc.Issue("9", []string{RoleStaff})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var uid string
	var roles []string
	handler := func(c echo.Context) error {
		uid = UserIDFromContext(c.Request().Context())
		roles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	if err := TokenMiddleware(svc)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "9" {
		t.Errorf("expected user id 9, got %q", uid)
	}
	if len(roles) != 1 || roles[0] != RoleStaff {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestTokenMiddleware_HandlerErrorPassesThrough(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	token, _ := svc.Issue("9", nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	notFound := echo.NewHTTPError(http.StatusNotFound)
	handler := func(c echo.Context) error { return notFound }

	err := TokenMiddleware(svc)(handler)(c)
	if err != notFound {
		t.Errorf("handler error should pass through unchanged, got %v", err)
	}
}
