package main

import (
	"fmt"
	"net/url"
	"strings"
)

// Número de destino dos links. Sobrescrito por WHATSAPP_PHONE.
const defaultWhatsAppPhone = "5516993470022"

func whatsappPhone() string {
	return getenv("WHATSAPP_PHONE", defaultWhatsAppPhone)
}

const notProvided = "Não informado"

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// conversionMessage monta a mensagem pré-preenchida de acordo com a
// categoria. Campos ausentes aparecem como "Não informado" para o time de
// atendimento saber o que ainda falta coletar.
func conversionMessage(c Conversion) (string, error) {
	contact := fmt.Sprintf("Nome: %s\nTelefone: %s\nE-mail: %s",
		c.Name, orNotProvided(c.Phone), orNotProvided(c.Email))

	switch c.ButtonType {
	case ButtonPlanSubscription:
		return fmt.Sprintf("Olá! Tenho interesse em assinar o plano %s do Cartão + Vidah.\n\n%s",
			orNotProvided(c.PlanName), contact), nil
	case ButtonDoctorAppointment:
		return fmt.Sprintf("Olá! Gostaria de agendar uma consulta com %s pelo Cartão + Vidah.\n\n%s",
			orNotProvided(c.DoctorName), contact), nil
	case ButtonEnterpriseQuote:
		return fmt.Sprintf("Olá! Gostaria de uma cotação do Cartão + Vidah para a minha empresa.\n\n%s",
			contact), nil
	case "":
		return "", fmt.Errorf("missing button type")
	}
	return "", fmt.Errorf("invalid button type: %q", c.ButtonType)
}

// Tokens que indicam navegador móvel. Comparação sem case, por substring.
var mobileTokens = []string{
	"android", "webos", "iphone", "ipad", "ipod",
	"blackberry", "iemobile", "opera mini", "mobile", "phone",
}

func isMobileUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	lower := strings.ToLower(ua)
	for _, t := range mobileTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// buildWhatsAppURL devolve o link final: deep link wa.me para mobile
// (abre o app direto) ou web.whatsapp.com para desktop. A categoria é
// revalidada aqui mesmo que a validação do endpoint já tenha passado.
func buildWhatsAppURL(c Conversion, userAgent string) (string, error) {
	msg, err := conversionMessage(c)
	if err != nil {
		return "", err
	}
	encoded := encodeMessage(msg)
	phone := whatsappPhone()

	if isMobileUserAgent(userAgent) {
		return fmt.Sprintf("https://wa.me/%s?text=%s", phone, encoded), nil
	}
	return fmt.Sprintf("https://web.whatsapp.com/send?phone=%s&text=%s", phone, encoded), nil
}

// encodeMessage percent-encoda no estilo encodeURIComponent: espaço vira
// %20, não "+", para o WhatsApp exibir a mensagem corretamente.
func encodeMessage(msg string) string {
	return strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}
