package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// Plan é um plano do cartão exibido no site.
type Plan struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	AnnualPrice   float64   `json:"annualPrice"`
	MonthlyPrice  float64   `json:"monthlyPrice"`
	AdhesionFee   float64   `json:"adhesionFee"`
	MaxDependents int       `json:"maxDependents"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Subscription registra a intenção de assinatura de um plano. Não há
// cobrança aqui; o status nasce "pending" e o fechamento acontece pelo
// WhatsApp com o time comercial.
type Subscription struct {
	ID            int64      `json:"id"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	PlanID        int64      `json:"planId"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentStatus string     `json:"paymentStatus"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
}

func (a *App) mountPlans(r chi.Router) {
	r.Get("/plans", a.listPlans)
	r.Get("/plans/{id}", a.getPlan)
}

func (a *App) mountSubscriptions(r chi.Router) {
	r.Post("/subscriptions", a.createSubscription)
	r.Get("/subscriptions/{id}", a.getSubscription)
}

func (a *App) listPlans(w http.ResponseWriter, r *http.Request) {
	rows, err := a.DB.Query(r.Context(),
		`SELECT id, name, type, annual_price, monthly_price, adhesion_fee, max_dependents, is_active, created_at
		 FROM plans
		 WHERE is_active
		 ORDER BY id`)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao buscar planos")
		return
	}
	defer rows.Close()

	out := []Plan{}
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.AnnualPrice, &p.MonthlyPrice,
			&p.AdhesionFee, &p.MaxDependents, &p.IsActive, &p.CreatedAt); err != nil {
			jsonError(w, http.StatusInternalServerError, "Erro ao buscar planos")
			return
		}
		out = append(out, p)
	}
	jsonOK(w, out)
}

func (a *App) getPlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "ID do plano inválido")
		return
	}
	var p Plan
	err = a.DB.QueryRow(r.Context(),
		`SELECT id, name, type, annual_price, monthly_price, adhesion_fee, max_dependents, is_active, created_at
		 FROM plans WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Type, &p.AnnualPrice, &p.MonthlyPrice,
			&p.AdhesionFee, &p.MaxDependents, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		jsonError(w, http.StatusNotFound, "Plano não encontrado")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao buscar plano")
		return
	}
	jsonOK(w, p)
}

func (a *App) createSubscription(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CustomerName  string `json:"customerName"`
		CustomerEmail string `json:"customerEmail"`
		PlanID        int64  `json:"planId"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if in.CustomerName == "" || in.PlanID == 0 || in.PaymentMethod == "" {
		jsonError(w, http.StatusBadRequest, "customerName, planId e paymentMethod são obrigatórios")
		return
	}

	// Plano precisa existir antes de registrar a intenção
	var exists bool
	if err := a.DB.QueryRow(r.Context(),
		`SELECT EXISTS(SELECT 1 FROM plans WHERE id=$1 AND is_active)`, in.PlanID).Scan(&exists); err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao criar assinatura")
		return
	}
	if !exists {
		jsonError(w, http.StatusNotFound, "Plano não encontrado")
		return
	}

	end := time.Now().AddDate(1, 0, 0)
	sub := Subscription{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		PlanID:        in.PlanID,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: "pending",
		EndDate:       &end,
	}
	err := a.DB.QueryRow(r.Context(),
		`INSERT INTO subscriptions (customer_name, customer_email, plan_id, payment_method, payment_status, end_date)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, start_date`,
		sub.CustomerName, nullable(sub.CustomerEmail), sub.PlanID, sub.PaymentMethod, sub.PaymentStatus, end).
		Scan(&sub.ID, &sub.StartDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao criar assinatura")
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: sub, Message: "Assinatura criada com sucesso"})
}

func (a *App) getSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "ID da assinatura inválido")
		return
	}
	var sub Subscription
	var email *string
	err = a.DB.QueryRow(r.Context(),
		`SELECT id, customer_name, customer_email, plan_id, payment_method, payment_status, start_date, end_date
		 FROM subscriptions WHERE id=$1`, id).
		Scan(&sub.ID, &sub.CustomerName, &email, &sub.PlanID, &sub.PaymentMethod,
			&sub.PaymentStatus, &sub.StartDate, &sub.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		jsonError(w, http.StatusNotFound, "Assinatura não encontrada")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Erro ao buscar assinatura")
		return
	}
	if email != nil {
		sub.CustomerEmail = *email
	}
	jsonOK(w, sub)
}
