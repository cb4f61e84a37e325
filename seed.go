package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// seedDefaults insere o admin inicial e os planos padrão. Idempotente:
// rodar de novo não duplica nada. Invocado via "backend seed" no deploy.
func seedDefaults(ctx context.Context, db *pgxpool.Pool) error {
	if err := seedAdmin(ctx, db); err != nil {
		return err
	}
	return seedPlans(ctx, db)
}

func seedAdmin(ctx context.Context, db *pgxpool.Pool) error {
	username := getenv("ADMIN_USERNAME", "admin")
	email := getenv("ADMIN_EMAIL", "admin@cartaomaisvidah.com.br")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Print("seed: ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admin_users WHERE username=$1)`, username).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Printf("seed: admin %q already exists", username)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`INSERT INTO admin_users(username, password, email, is_active) VALUES($1,$2,$3,TRUE)`,
		username, string(hashed), email)
	if err == nil {
		log.Printf("seed: admin %q created", username)
	}
	return err
}

func seedPlans(ctx context.Context, db *pgxpool.Pool) error {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Printf("seed: %d plans already present", count)
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO plans (name, type, annual_price, monthly_price, adhesion_fee, max_dependents, is_active)
		 VALUES
			('Cartão Familiar', 'familiar', 418.80, 34.90, 0, 4, TRUE),
			('Cartão Corporativo', 'empresarial', 0, 0, 0, 0, TRUE)`)
	if err == nil {
		log.Print("seed: default plans created")
	}
	return err
}
