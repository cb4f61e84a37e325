package main

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// apiResponse é o envelope padrão de todas as respostas JSON da API.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// jsonErrorDetail inclui o detalhe por campo no corpo do 400.
func jsonErrorDetail(w http.ResponseWriter, status int, errMsg, detail string) {
	writeJSON(w, status, apiResponse{Success: false, Error: errMsg, Message: detail})
}

// rateLimited devolve o handler de estouro de limite com a mensagem dada.
func rateLimited(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusTooManyRequests, msg)
	}
}

// headerTrim retorna o header "k" já com TrimSpace.
func headerTrim(r *http.Request, k string) string {
	return strings.TrimSpace(r.Header.Get(k))
}

// clientIP extrai só o IP do RemoteAddr (o middleware RealIP já resolveu
// X-Forwarded-For antes de chegar aqui).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
