package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()

	c, rec := postJSON(e, "/api/auth/register", `{"email":"staff@clinic.test","password":"s3cret","name":"Pat"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["email"] != "staff@clinic.test" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash must not appear in the response")
	}
}

func TestHandler_Register_Validation(t *testing.T) {
	h, e := newTestHandler()

	c, rec := postJSON(e, "/api/auth/register", `{"email":"bad"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "Validation failed" {
		t.Errorf("unexpected error: %q", body.Error)
	}
	if body.Details["email"] != "Invalid email format" {
		t.Errorf("unexpected details: %v", body.Details)
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Register(context.Background(), "staff@clinic.test", "s3cret", "Pat")

	c, rec := postJSON(e, "/api/auth/login", `{"email":"staff@clinic.test","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Login successful" {
		t.Errorf("unexpected message: %q", body["message"])
	}
	if body["access_token"] == "" {
		t.Error("expected access token")
	}
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Register(context.Background(), "staff@clinic.test", "s3cret", "Pat")

	c, rec := postJSON(e, "/api/auth/login", `{"email":"staff@clinic.test","password":"nope"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Invalid credentials" {
		t.Errorf("expected Invalid credentials, got %q", body["error"])
	}
}

func TestHandler_Me(t *testing.T) {
	h, e := newTestHandler()
	u, err := h.svc.Register(context.Background(), "staff@clinic.test", "s3cret", "Pat")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := context.WithValue(c.Request().Context(), auth.UserIDKey, "1")
	c.SetRequest(c.Request().WithContext(ctx))

	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var got User
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Email != u.Email {
		t.Errorf("expected %s, got %s", u.Email, got.Email)
	}
}

func TestHandler_Me_BadSubject(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 HTTPError, got %v", err)
	}
}
