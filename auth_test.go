package main

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	initAuth()

	token, err := issueAdminToken(7, "admin")
	if err != nil {
		t.Fatalf("issueAdminToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/admin/conversions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	id, username, err := adminFromToken(req)
	if err != nil {
		t.Fatalf("adminFromToken: %v", err)
	}
	if id != 7 || username != "admin" {
		t.Errorf("claims = (%d, %q)", id, username)
	}
}

func TestAdminTokenExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	initAuth()

	now := time.Now()
	_, token, err := tokenAuth.Encode(map[string]any{
		"admin_id": int64(7),
		"username": "admin",
		"iat":      now.Add(-48 * time.Hour).Unix(),
		"exp":      now.Add(-24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/admin/conversions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, _, err := adminFromToken(req); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestAdminTokenWrongSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	initAuth()

	// Token assinado com outro segredo
	other := jwtauth.New("HS256", []byte("another-secret"), nil)
	_, token, err := other.Encode(map[string]any{
		"admin_id": int64(7),
		"username": "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/admin/conversions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, _, err := adminFromToken(req); err == nil {
		t.Error("expected forged token to be rejected")
	}
}

func TestAdminTokenHeaderShapes(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	initAuth()

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if _, _, err := adminFromToken(req); err == nil {
			t.Errorf("header %q accepted", header)
		}
	}
}

func TestInitAuthSessionSecretFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "legacy-secret")
	initAuth()
	token, err := issueAdminToken(1, "admin")
	if err != nil {
		t.Fatalf("issueAdminToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, _, err := adminFromToken(req); err != nil {
		t.Errorf("token under SESSION_SECRET fallback rejected: %v", err)
	}
}
