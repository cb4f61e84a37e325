package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureSchema cria/ajusta o schema necessário de forma idempotente.
// O histórico do projeto tem versões divergentes da tabela de conversões
// (uma delas sem button_type e com email obrigatório); a versão abaixo é
// a mais completa e é a autoritativa.
func ensureSchema(ctx context.Context, db *pgxpool.Pool) error {
	// Força search_path public (também feito no AfterConnect)
	_, _ = db.Exec(ctx, `SET search_path TO public`)

	stmts := []string{
		// ADMIN USERS
		`CREATE TABLE IF NOT EXISTS public.admin_users (
			id          BIGSERIAL PRIMARY KEY,
			username    TEXT NOT NULL UNIQUE,
			password    TEXT NOT NULL,
			email       TEXT NOT NULL UNIQUE,
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		// PLANOS
		`CREATE TABLE IF NOT EXISTS public.plans (
			id             BIGSERIAL PRIMARY KEY,
			name           TEXT NOT NULL,
			type           TEXT NOT NULL,
			annual_price   NUMERIC(10,2) NOT NULL DEFAULT 0,
			monthly_price  NUMERIC(10,2) NOT NULL DEFAULT 0,
			adhesion_fee   NUMERIC(10,2) NOT NULL DEFAULT 0,
			max_dependents INTEGER NOT NULL DEFAULT 0,
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		// ASSINATURAS (sem processamento de pagamento; registra intenção)
		`CREATE TABLE IF NOT EXISTS public.subscriptions (
			id             BIGSERIAL PRIMARY KEY,
			customer_name  TEXT NOT NULL,
			customer_email TEXT,
			plan_id        BIGINT NOT NULL REFERENCES public.plans(id),
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			start_date     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			end_date       TIMESTAMPTZ
		);`,

		// CONVERSÕES WHATSAPP (append-only)
		`CREATE TABLE IF NOT EXISTS public.whatsapp_conversions (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			email       TEXT,
			phone       TEXT,
			button_type TEXT NOT NULL,
			plan_name   TEXT,
			doctor_name TEXT,
			ip_address  TEXT,
			user_agent  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT chk_button_type CHECK (
				button_type IN ('plan_subscription', 'doctor_appointment', 'enterprise_quote')
			)
		);`,

		// Ajustes defensivos para bases antigas (adiciona colunas que faltarem)
		`DO $$ BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions' AND column_name='button_type'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ADD COLUMN button_type TEXT NOT NULL DEFAULT ''plan_subscription''';
			END IF;

			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions' AND column_name='plan_name'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ADD COLUMN plan_name TEXT';
			END IF;

			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions' AND column_name='doctor_name'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ADD COLUMN doctor_name TEXT';
			END IF;

			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions' AND column_name='ip_address'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ADD COLUMN ip_address TEXT';
			END IF;

			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions' AND column_name='user_agent'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ADD COLUMN user_agent TEXT';
			END IF;

			IF EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema='public' AND table_name='whatsapp_conversions'
				AND column_name='email' AND is_nullable='NO'
			) THEN
				EXECUTE 'ALTER TABLE public.whatsapp_conversions ALTER COLUMN email DROP NOT NULL';
			END IF;
		END $$;`,

		`CREATE INDEX IF NOT EXISTS idx_conversions_created ON public.whatsapp_conversions (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_button_type ON public.whatsapp_conversions (button_type);`,
		`CREATE INDEX IF NOT EXISTS idx_admin_users_username ON public.admin_users (username);`,
	}

	for _, q := range stmts {
		if _, err := db.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
