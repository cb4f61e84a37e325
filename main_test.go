package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeConversionStore guarda conversões em memória e permite simular
// falha de persistência.
type fakeConversionStore struct {
	createCalls []conversionInput
	failCreate  bool
	items       []Conversion
}

func (f *fakeConversionStore) Create(ctx context.Context, in conversionInput) createResult {
	f.createCalls = append(f.createCalls, in)
	if f.failCreate {
		return createResult{Conversion: fallbackConversion(in), Persisted: false}
	}
	c := conversionFromInput(in)
	c.ID = int64(len(f.items) + 1)
	c.CreatedAt = time.Now()
	f.items = append([]Conversion{c}, f.items...)
	return createResult{Conversion: c, Persisted: true}
}

func (f *fakeConversionStore) ListAll(ctx context.Context) []Conversion {
	out := make([]Conversion, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeConversionStore) ListRange(ctx context.Context, from, to time.Time) []Conversion {
	out := []Conversion{}
	for _, c := range f.items {
		if !c.CreatedAt.Before(from) && !c.CreatedAt.After(to) {
			out = append(out, c)
		}
	}
	return out
}

// fakeAdminStore resolve contas por username a partir de um mapa.
type fakeAdminStore struct {
	byUsername map[string]*AdminUser
}

func (f *fakeAdminStore) ByUsername(ctx context.Context, username string) (*AdminUser, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, errors.New("no rows in result set")
}

func newTestApp(t *testing.T, store conversionStore, admins adminStore) *App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	initAuth()
	return &App{
		store:   store,
		admins:  admins,
		cache:   &statsCache{},
		metrics: newMetricsCollector(),
	}
}

// doJSON dispara uma requisição contra o router completo e decodifica o
// envelope de resposta.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, hdr map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out apiResponse
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
