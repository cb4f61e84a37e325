package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

var processStart = time.Now()

// metricsCollector acumula contadores de requisição em memória. A média
// de tempo de resposta considera só as últimas 100 requisições e tudo
// zera a cada hora.
type metricsCollector struct {
	mu            sync.Mutex
	requestCount  int64
	errorCount    int64
	slowRequests  int64
	responseTimes []time.Duration
	lastReset     time.Time
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{lastReset: time.Now()}
}

const slowRequestThreshold = 5 * time.Second

func (m *metricsCollector) record(d time.Duration, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastReset) >= time.Hour {
		m.requestCount = 0
		m.errorCount = 0
		m.slowRequests = 0
		m.responseTimes = nil
		m.lastReset = time.Now()
	}

	m.requestCount++
	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 100 {
		m.responseTimes = m.responseTimes[1:]
	}
	if status >= 400 {
		m.errorCount++
	}
	if d > slowRequestThreshold {
		m.slowRequests++
	}
}

type metricsSnapshot struct {
	RequestCount      int64     `json:"requestCount"`
	AverageResponseMs float64   `json:"averageResponseMs"`
	ErrorCount        int64     `json:"errorCount"`
	SlowRequests      int64     `json:"slowRequests"`
	LastReset         time.Time `json:"lastReset"`
}

func (m *metricsCollector) snapshot() metricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var avg float64
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, d := range m.responseTimes {
			total += d
		}
		avg = float64(total.Milliseconds()) / float64(len(m.responseTimes))
	}
	return metricsSnapshot{
		RequestCount:      m.requestCount,
		AverageResponseMs: avg,
		ErrorCount:        m.errorCount,
		SlowRequests:      m.slowRequests,
		LastReset:         m.lastReset,
	}
}

// collect alimenta o coletor e emite uma linha estruturada para erros e
// requisições lentas.
func (m *metricsCollector) collect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		m.record(elapsed, ww.Status())

		if ww.Status() >= 500 || elapsed > slowRequestThreshold {
			log.Printf(`{"level":"error","method":%q,"path":%q,"status":%d,"response_time_ms":%d,"ip":%q}`,
				r.Method, r.URL.Path, ww.Status(), elapsed.Milliseconds(), clientIP(r))
		}
	})
}

// health responde liveness. Sempre 200 enquanto o processo atende.
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    int64(time.Since(processStart).Seconds()),
		"memory": map[string]any{
			"heapMB": mem.HeapAlloc / 1024 / 1024,
			"sysMB":  mem.Sys / 1024 / 1024,
		},
		"goVersion": runtime.Version(),
		"database":  "configured",
		"env":       getenv("APP_ENV", "development"),
	})
}

// ready responde readiness: banco alcançável e processo aquecido.
func (a *App) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := true
	if a.DB != nil {
		dbOK = a.DB.Ping(ctx) == nil
	}
	checks := map[string]bool{
		"database": dbOK,
		"uptime":   time.Since(processStart) > 5*time.Second,
	}

	ready := true
	for _, ok := range checks {
		ready = ready && ok
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ready":     ready,
		"checks":    checks,
		"timestamp": time.Now().UnixMilli(),
	})
}

// metricsEndpoint expõe o snapshot do coletor mais dados do runtime.
func (a *App) metricsEndpoint(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    int64(time.Since(processStart).Seconds()),
		"metrics":   a.metrics.snapshot(),
		"memory": map[string]any{
			"heapMB":     mem.HeapAlloc / 1024 / 1024,
			"sysMB":      mem.Sys / 1024 / 1024,
			"goroutines": runtime.NumGoroutine(),
		},
		"goVersion":   runtime.Version(),
		"environment": getenv("APP_ENV", "development"),
		"pid":         os.Getpid(),
	})
}
