package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// adminLogin autentica o operador do painel. A resposta de falha é sempre
// a mesma ("Credenciais inválidas") para usuário desconhecido, conta
// inativa ou senha errada — a distinção fica só no log.
func (a *App) adminLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, http.StatusBadRequest, "Username e password são obrigatórios")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		jsonError(w, http.StatusBadRequest, "Username e password são obrigatórios")
		return
	}

	admin, err := a.admins.ByUsername(r.Context(), in.Username)
	if err != nil {
		log.Printf("admin login: unknown username %q: %v", in.Username, err)
		jsonError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}
	if !admin.IsActive {
		log.Printf("admin login: inactive account %q", in.Username)
		jsonError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(in.Password)) != nil {
		log.Printf("admin login: bad password for %q", in.Username)
		jsonError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	token, err := issueAdminToken(admin.ID, admin.Username)
	if err != nil {
		log.Printf("admin login: token generation failed: %v", err)
		jsonError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	jsonOK(w, map[string]any{
		"token": token,
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
		},
	})
}

// adminConversions lista todas as conversões, mais recentes primeiro.
func (a *App) adminConversions(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, a.store.ListAll(r.Context()))
}

// adminExport exporta as conversões em CSV (padrão) ou JSON, com filtro
// opcional por período inclusivo (?startDate&endDate).
func (a *App) adminExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "csv"
	}

	var conversions []Conversion
	startRaw, endRaw := q.Get("startDate"), q.Get("endDate")
	if startRaw != "" && endRaw != "" {
		from, err1 := parseExportDate(startRaw, false)
		to, err2 := parseExportDate(endRaw, true)
		if err1 != nil || err2 != nil {
			jsonError(w, http.StatusBadRequest, "Datas inválidas: use YYYY-MM-DD")
			return
		}
		conversions = a.store.ListRange(r.Context(), from, to)
	} else {
		conversions = a.store.ListAll(r.Context())
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="conversions.csv"`)
		_, _ = w.Write([]byte(conversionsCSV(conversions)))
		return
	}
	jsonOK(w, conversions)
}

// parseExportDate aceita data pura ou RFC3339. Datas puras de fim de
// período são esticadas até o último instante do dia para o filtro ser
// inclusivo nas duas pontas.
func parseExportDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// dashboardStats agrega os números exibidos na tela inicial do painel.
type dashboardStats struct {
	TotalConversions   int `json:"totalConversions"`
	PlanSubscriptions  int `json:"planSubscriptions"`
	DoctorAppointments int `json:"doctorAppointments"`
	EnterpriseQuotes   int `json:"enterpriseQuotes"`
}

// adminDashboard devolve os contadores por categoria e as 10 conversões
// mais recentes. Quando o Redis está configurado a resposta fica cacheada
// por 60s; o painel faz polling e os números não precisam ser exatos ao
// segundo.
func (a *App) adminDashboard(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "admin:dashboard"

	if b, ok := a.cache.Get(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	conversions := a.store.ListAll(r.Context())
	stats := dashboardStats{TotalConversions: len(conversions)}
	for _, c := range conversions {
		switch c.ButtonType {
		case ButtonPlanSubscription:
			stats.PlanSubscriptions++
		case ButtonDoctorAppointment:
			stats.DoctorAppointments++
		case ButtonEnterpriseQuote:
			stats.EnterpriseQuotes++
		}
	}

	latest := conversions
	if len(latest) > 10 {
		latest = latest[:10]
	}

	payload := apiResponse{Success: true, Data: map[string]any{
		"stats":       stats,
		"conversions": latest,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao buscar dashboard")
		return
	}
	a.cache.Set(r.Context(), cacheKey, body, time.Minute)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// conversionsCSV gera o arquivo consumido pelas ferramentas de campanha.
// Nome é quebrado em primeiro/restante, telefone fica só com dígitos e a
// categoria de interesse cai para "Geral" quando não há sub-rótulo.
func conversionsCSV(conversions []Conversion) string {
	var b strings.Builder
	b.WriteString("Email,Phone,First_Name,Last_Name,Interest_Category,Campaign_Type\n")

	for i, c := range conversions {
		first, rest := splitName(c.Name)

		category := c.PlanName
		if category == "" {
			category = c.DoctorName
		}
		if category == "" {
			category = "Geral"
		}

		var campaign string
		switch c.ButtonType {
		case ButtonPlanSubscription:
			campaign = "Planos"
		case ButtonDoctorAppointment:
			campaign = "Consultas"
		default:
			campaign = "Corporativo"
		}

		fmt.Fprintf(&b, "%q,%q,%q,%q,%q,%q", c.Email, digitsOnly(c.Phone), first, rest, category, campaign)
		if i < len(conversions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func splitName(name string) (first, rest string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
