package main

import (
	"encoding/json"
	"log"
	"net/http"
)

// trackWhatsApp é o endpoint de captura de lead: valida o payload, grava a
// conversão e devolve o link de WhatsApp pronto para o redirect.
// Fluxo: recebido -> validado -> gravado -> link gerado -> respondido.
// Falha de INSERT não interrompe o fluxo (ver createResult); falha na
// geração do link depois da validação é um 500.
func (a *App) trackWhatsApp(w http.ResponseWriter, r *http.Request) {
	var in trackingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonErrorDetail(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON malformado")
		return
	}

	input, errs := validateTracking(in)
	if len(errs) > 0 {
		jsonErrorDetail(w, http.StatusBadRequest, "Dados inválidos", joinFieldErrors(errs))
		return
	}

	input.IPAddress = clientIP(r)
	input.UserAgent = headerTrim(r, "User-Agent")

	res := a.store.Create(r.Context(), input)
	if !res.Persisted {
		log.Printf("track-whatsapp: conversion for %q not persisted, continuing with best-effort record", input.Name)
	}

	waURL, err := buildWhatsAppURL(res.Conversion, input.UserAgent)
	if err != nil {
		log.Printf("track-whatsapp: link generation failed: %v", err)
		jsonError(w, http.StatusInternalServerError, "Erro ao gerar link do WhatsApp")
		return
	}

	jsonOK(w, map[string]any{
		"conversion":  res.Conversion,
		"whatsappUrl": waURL,
	})
}
