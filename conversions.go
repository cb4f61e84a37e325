package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ButtonType classifica a intenção comercial de uma conversão. O conjunto
// é fechado; qualquer outro valor é rejeitado na validação e de novo na
// geração do link.
type ButtonType string

const (
	ButtonPlanSubscription  ButtonType = "plan_subscription"
	ButtonDoctorAppointment ButtonType = "doctor_appointment"
	ButtonEnterpriseQuote   ButtonType = "enterprise_quote"
)

// parseButtonType valida a string crua vinda do payload.
func parseButtonType(s string) (ButtonType, bool) {
	switch ButtonType(s) {
	case ButtonPlanSubscription, ButtonDoctorAppointment, ButtonEnterpriseQuote:
		return ButtonType(s), true
	}
	return "", false
}

// Conversion é um evento de captura de lead atrelado a um clique de
// WhatsApp. Registros são imutáveis depois de criados.
type Conversion struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	ButtonType ButtonType `json:"buttonType"`
	PlanName   string     `json:"planName,omitempty"`
	DoctorName string     `json:"doctorName,omitempty"`
	IPAddress  string     `json:"ipAddress,omitempty"`
	UserAgent  string     `json:"userAgent,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// conversionInput carrega os campos já validados de uma nova conversão.
type conversionInput struct {
	Name       string
	Email      string
	Phone      string
	ButtonType ButtonType
	PlanName   string
	DoctorName string
	IPAddress  string
	UserAgent  string
}

// createResult distingue um registro durável de um best-effort. Quando o
// INSERT falha o fluxo segue com um registro em memória (Persisted=false)
// para não derrubar o redirecionamento — disponibilidade vale mais que a
// durabilidade de um registro de analytics.
type createResult struct {
	Conversion Conversion
	Persisted  bool
}

type conversionStore interface {
	Create(ctx context.Context, in conversionInput) createResult
	ListAll(ctx context.Context) []Conversion
	ListRange(ctx context.Context, from, to time.Time) []Conversion
}

type pgConversionStore struct {
	db *pgxpool.Pool
}

func (s *pgConversionStore) Create(ctx context.Context, in conversionInput) createResult {
	var id int64
	var created time.Time
	err := s.db.QueryRow(ctx,
		`INSERT INTO whatsapp_conversions (name, email, phone, button_type, plan_name, doctor_name, ip_address, user_agent)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, created_at`,
		in.Name, nullable(in.Email), nullable(in.Phone), string(in.ButtonType),
		nullable(in.PlanName), nullable(in.DoctorName), nullable(in.IPAddress), nullable(in.UserAgent)).
		Scan(&id, &created)
	if err != nil {
		log.Printf("conversions: insert failed, returning best-effort record: %v", err)
		return createResult{Conversion: fallbackConversion(in), Persisted: false}
	}
	c := conversionFromInput(in)
	c.ID = id
	c.CreatedAt = created
	return createResult{Conversion: c, Persisted: true}
}

func (s *pgConversionStore) ListAll(ctx context.Context) []Conversion {
	return s.list(ctx,
		`SELECT id, name, COALESCE(email,''), COALESCE(phone,''), button_type,
		        COALESCE(plan_name,''), COALESCE(doctor_name,''),
		        COALESCE(ip_address,''), COALESCE(user_agent,''), created_at
		 FROM whatsapp_conversions
		 ORDER BY created_at DESC`)
}

func (s *pgConversionStore) ListRange(ctx context.Context, from, to time.Time) []Conversion {
	return s.list(ctx,
		`SELECT id, name, COALESCE(email,''), COALESCE(phone,''), button_type,
		        COALESCE(plan_name,''), COALESCE(doctor_name,''),
		        COALESCE(ip_address,''), COALESCE(user_agent,''), created_at
		 FROM whatsapp_conversions
		 WHERE created_at >= $1 AND created_at <= $2
		 ORDER BY created_at DESC`, from, to)
}

// list roda a query e degrada para lista vazia em caso de erro; leituras
// de conversões nunca propagam falha de banco para o cliente.
func (s *pgConversionStore) list(ctx context.Context, q string, args ...any) []Conversion {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		log.Printf("conversions: list failed: %v", err)
		return []Conversion{}
	}
	defer rows.Close()

	out := []Conversion{}
	for rows.Next() {
		var c Conversion
		var bt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &bt,
			&c.PlanName, &c.DoctorName, &c.IPAddress, &c.UserAgent, &c.CreatedAt); err != nil {
			log.Printf("conversions: scan failed: %v", err)
			return []Conversion{}
		}
		c.ButtonType = ButtonType(bt)
		out = append(out, c)
	}
	if rows.Err() != nil {
		log.Printf("conversions: rows failed: %v", rows.Err())
		return []Conversion{}
	}
	return out
}

func conversionFromInput(in conversionInput) Conversion {
	return Conversion{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		ButtonType: in.ButtonType,
		PlanName:   in.PlanName,
		DoctorName: in.DoctorName,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	}
}

// fallbackConversion monta o registro best-effort usado quando o banco
// está indisponível. O ID vem do relógio só para o cliente ter algo único.
func fallbackConversion(in conversionInput) Conversion {
	c := conversionFromInput(in)
	c.ID = time.Now().UnixMilli()
	c.CreatedAt = time.Now()
	return c
}

// nullable converte "" em NULL para as colunas opcionais.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
