package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
)

// signer/verifier global
var tokenAuth *jwtauth.JWTAuth

// initAuth configura o assinador HS256. JWT_SECRET manda; SESSION_SECRET
// serve de reserva para deploys antigos que só definem o segundo.
func initAuth() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("SESSION_SECRET")
	}
	if secret == "" {
		secret = "secret"
	}
	tokenAuth = jwtauth.New("HS256", []byte(secret), nil)
}

// AdminUser é a conta de operador do painel. O hash nunca sai no JSON.
type AdminUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type adminStore interface {
	ByUsername(ctx context.Context, username string) (*AdminUser, error)
}

type pgAdminStore struct {
	db *pgxpool.Pool
}

func (s *pgAdminStore) ByUsername(ctx context.Context, username string) (*AdminUser, error) {
	var u AdminUser
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password, email, is_active, created_at
		 FROM admin_users
		 WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// issueAdminToken gera o JWT do painel com validade de 24h.
func issueAdminToken(adminID int64, username string) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"admin_id": adminID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
	}
	_, tokenString, err := tokenAuth.Encode(claims)
	return tokenString, err
}

// adminFromToken extrai e valida as claims do Authorization: Bearer <token>.
// Assinatura e expiração são verificadas em toda requisição protegida.
func adminFromToken(r *http.Request) (int64, string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return 0, "", errors.New("no authorization header")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, "", errors.New("invalid authorization header")
	}

	tok, err := tokenAuth.Decode(parts[1])
	if err != nil || tok == nil {
		return 0, "", errors.New("invalid token")
	}
	if err := jwxjwt.Validate(tok); err != nil {
		return 0, "", errors.New("expired or invalid token")
	}

	id := toInt64(getClaim(tok, "admin_id"))
	username, _ := getClaim(tok, "username").(string)
	if id == 0 || username == "" {
		return 0, "", errors.New("missing claims")
	}
	return id, username, nil
}

// requireAdmin protege um handler exigindo token válido de admin.
func (a *App) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := adminFromToken(r); err != nil {
			jsonError(w, http.StatusUnauthorized, "Token de acesso inválido")
			return
		}
		next(w, r)
	}
}

func getClaim(tok jwxjwt.Token, key string) any {
	v, _ := tok.Get(key)
	return v
}

// conversão genérica p/ int64
func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case float32:
		return int64(t)
	default:
		return 0
	}
}
