package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type App struct {
	DB      *pgxpool.Pool
	store   conversionStore
	admins  adminStore
	cache   *statsCache
	metrics *metricsCollector
}

func main() {
	_ = godotenv.Load()
	addr := getenv("APP_ADDR", ":"+getenv("PORT", "8080"))
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Sem banco não há persistência de conversões nem login de admin.
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	// Pool com AfterConnect para garantir search_path=public
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("db parse config: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `SET search_path TO public`)
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// Cria/ajusta o schema ao subir (idempotente)
	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// "backend seed" popula admin e planos padrão e encerra. Passo explícito
	// de deploy, não um efeito colateral do boot.
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := seedDefaults(ctx, pool); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Print("seed: done")
		return
	}

	initAuth()

	app := &App{
		DB:      pool,
		store:   &pgConversionStore{db: pool},
		admins:  &pgAdminStore{db: pool},
		cache:   openStatsCache(),
		metrics: newMetricsCollector(),
	}

	log.Printf("listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, app.routes()))
}

// routes monta o router completo. Separado do main para os testes de
// handler exercitarem a mesma pilha de middleware e rotas.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(a.metrics.collect)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Limite geral para todas as rotas
	r.Use(httprate.Limit(100, 15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited("Muitas tentativas. Tente novamente em 15 minutos.")),
	))

	r.Options("/*", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	// Liveness/readiness/metrics
	r.Get("/health", a.health)
	r.Get("/ready", a.ready)
	r.Get("/_health", a.health)
	r.Get("/metrics", a.metricsEndpoint)

	// Captura de lead fora de /api (o site publica nesse caminho)
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, 5*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited("Limite de solicitações WhatsApp excedido. Tente novamente em 5 minutos.")),
		))
		r.Post("/track-whatsapp", a.trackWhatsApp)
	})

	// API
	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(50, 15*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited("Limite de API excedido. Tente novamente em 15 minutos.")),
		))

		r.Post("/whatsapp/conversions", a.trackWhatsApp)

		a.mountPlans(r)
		a.mountSubscriptions(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(httprate.Limit(20, 15*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(rateLimited("Limite administrativo excedido. Tente novamente em 15 minutos.")),
			))
			r.Group(func(r chi.Router) {
				r.Use(httprate.Limit(5, 15*time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(rateLimited("Muitas tentativas de login. Tente novamente em 15 minutos.")),
				))
				r.Post("/login", a.adminLogin)
			})
			r.Get("/conversions", a.requireAdmin(a.adminConversions))
			r.Get("/conversions/export", a.requireAdmin(a.adminExport))
			r.Get("/dashboard", a.requireAdmin(a.adminDashboard))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "Rota não encontrada")
	})

	return r
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func allowedOrigins() []string {
	v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	if v == "" || v == "*" {
		return []string{"*"}
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
