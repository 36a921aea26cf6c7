package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medrec/medrec/internal/platform/apperr"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)

	token, err := svc.Issue("42", []string{RoleAdmin, RoleStaff})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ident, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.UserID != "42" {
		t.Errorf("expected subject 42, got %q", ident.UserID)
	}
	if len(ident.Roles) != 2 || ident.Roles[0] != RoleAdmin {
		t.Errorf("unexpected roles: %v", ident.Roles)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	other := NewTokenService([]byte("another-key-another-key-another-"), time.Hour)

	token, _ := svc.Issue("1", nil)
	if _, err := other.Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testKey, -time.Minute)

	token, _ := svc.Issue("1", []string{RoleStaff})
	if _, err := svc.Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Errorf("%q: expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestTokenService_RejectsUnsigned(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for alg=none, got %v", err)
	}
}

func TestTokenService_MissingRolesClaim(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)

	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, err := bare.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ident, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(ident.Roles) != 0 {
		t.Errorf("expected empty roles, got %v", ident.Roles)
	}
}

func TestTokenService_MalformedRolesClaim(t *testing.T) {
	svc := NewTokenService(testKey, time.Hour)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "7",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": "ADMIN",
	})
	tok, _ := bad.SignedString(testKey)

	ident, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(ident.Roles) != 0 {
		t.Errorf("expected empty roles for malformed claim, got %v", ident.Roles)
	}
}
