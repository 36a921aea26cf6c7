package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medrec_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool bounds: %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("expected 1h token TTL, got %v", cfg.TokenTTL())
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medrec_test")
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.TokenTTL() != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", cfg.TokenTTL())
	}
}

func TestSigningKey_DevFallback(t *testing.T) {
	cfg := &Config{Env: "development"}
	if len(cfg.SigningKey()) == 0 {
		t.Error("expected development fallback signing key")
	}

	cfg.JWTSecret = "configured-secret-value-long-enough!"
	if string(cfg.SigningKey()) != cfg.JWTSecret {
		t.Error("configured secret should win over fallback")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev without secret", Config{Env: "development"}, false},
		{"production without secret", Config{Env: "production"}, true},
		{"production with short secret", Config{Env: "production", JWTSecret: "short"}, true},
		{"production with secret", Config{Env: "production", JWTSecret: "0123456789abcdef0123456789abcdef"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
