package main

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fieldError descreve uma falha de validação de um campo específico.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Letras (incluindo acentuadas) e espaços, como no formulário do site.
var nameRe = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s]+$`)

// trackingInput é o corpo cru de POST /track-whatsapp.
type trackingInput struct {
	Name       string `json:"name"`
	ButtonType string `json:"buttonType"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	PlanName   string `json:"planName"`
	DoctorName string `json:"doctorName"`
}

// validateTracking aplica as regras do formulário de captura. Ou o payload
// inteiro passa, ou nada é aceito: a lista de erros cobre todos os campos
// inválidos de uma vez.
func validateTracking(in trackingInput) (conversionInput, []fieldError) {
	var errs []fieldError

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs = append(errs, fieldError{"name", "Nome é obrigatório"})
	case utf8.RuneCountInString(name) < 2:
		errs = append(errs, fieldError{"name", "Nome deve ter pelo menos 2 caracteres"})
	case utf8.RuneCountInString(name) > 100:
		errs = append(errs, fieldError{"name", "Nome deve ter no máximo 100 caracteres"})
	case !nameRe.MatchString(name):
		errs = append(errs, fieldError{"name", "Nome deve conter apenas letras e espaços"})
	}

	bt, ok := parseButtonType(strings.TrimSpace(in.ButtonType))
	if !ok {
		if strings.TrimSpace(in.ButtonType) == "" {
			errs = append(errs, fieldError{"buttonType", "Campo buttonType é obrigatório"})
		} else {
			errs = append(errs, fieldError{"buttonType", "Tipo de botão inválido"})
		}
	}

	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, fieldError{"email", "Email inválido"})
		}
	}

	// Telefone é texto livre: máscaras variam e o número só entra na
	// mensagem pré-preenchida, nunca em discagem automática.

	if len(errs) > 0 {
		return conversionInput{}, errs
	}
	return conversionInput{
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		ButtonType: bt,
		PlanName:   strings.TrimSpace(in.PlanName),
		DoctorName: strings.TrimSpace(in.DoctorName),
	}, nil
}

// joinFieldErrors monta a mensagem "campo: motivo, campo: motivo" usada no
// corpo da resposta 400.
func joinFieldErrors(errs []fieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, ", ")
}
