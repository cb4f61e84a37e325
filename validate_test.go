package main

import (
	"strings"
	"testing"
)

func TestValidateTrackingAccepts(t *testing.T) {
	in := trackingInput{
		Name:       "  Ana Silva  ",
		ButtonType: "plan_subscription",
		Phone:      "(16) 99999-0000",
		Email:      "ana@x.com",
		PlanName:   "Familiar",
	}
	out, errs := validateTracking(in)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out.Name != "Ana Silva" {
		t.Errorf("name not trimmed: %q", out.Name)
	}
	if out.ButtonType != ButtonPlanSubscription {
		t.Errorf("buttonType = %q", out.ButtonType)
	}
	if out.Phone != "(16) 99999-0000" {
		t.Errorf("phone = %q", out.Phone)
	}
}

func TestValidateTrackingAcceptsAccentedNames(t *testing.T) {
	in := trackingInput{Name: "José Conceição", ButtonType: "doctor_appointment", DoctorName: "Dra. Paula"}
	if _, errs := validateTracking(in); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateTrackingOptionalFields(t *testing.T) {
	// email e phone ausentes são aceitos
	in := trackingInput{Name: "Carla", ButtonType: "enterprise_quote"}
	if _, errs := validateTracking(in); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	// phone é texto livre
	in.Phone = "+55 (16) 9.9999-0000 ramal 2"
	if _, errs := validateTracking(in); len(errs) > 0 {
		t.Fatalf("free-text phone rejected: %v", errs)
	}
}

func TestValidateTrackingRejects(t *testing.T) {
	cases := []struct {
		name  string
		in    trackingInput
		field string
	}{
		{"missing name", trackingInput{ButtonType: "plan_subscription"}, "name"},
		{"blank name", trackingInput{Name: "   ", ButtonType: "plan_subscription"}, "name"},
		{"short name", trackingInput{Name: "A", ButtonType: "plan_subscription"}, "name"},
		{"long name", trackingInput{Name: strings.Repeat("a", 101), ButtonType: "plan_subscription"}, "name"},
		{"name with digits", trackingInput{Name: "Ana 123", ButtonType: "plan_subscription"}, "name"},
		{"missing buttonType", trackingInput{Name: "Ana Silva"}, "buttonType"},
		{"unknown buttonType", trackingInput{Name: "Ana Silva", ButtonType: "refund"}, "buttonType"},
		{"bad email", trackingInput{Name: "Ana Silva", ButtonType: "plan_subscription", Email: "not-an-email"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := validateTracking(tc.in)
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			found := false
			for _, e := range errs {
				if e.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestValidateTrackingNeverPartiallyAccepts(t *testing.T) {
	// Dois campos inválidos: ambos reportados, nada aceito
	in := trackingInput{Name: "A", ButtonType: "bogus"}
	out, errs := validateTracking(in)
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %v", errs)
	}
	if out != (conversionInput{}) {
		t.Errorf("expected zero output on failure, got %+v", out)
	}
}

func TestJoinFieldErrors(t *testing.T) {
	msg := joinFieldErrors([]fieldError{
		{"name", "Nome é obrigatório"},
		{"buttonType", "Tipo de botão inválido"},
	})
	want := "name: Nome é obrigatório, buttonType: Tipo de botão inválido"
	if msg != want {
		t.Errorf("joinFieldErrors = %q, want %q", msg, want)
	}
}
