package main

import (
	"net/url"
	"strings"
	"testing"
)

func TestConversionMessageTemplates(t *testing.T) {
	cases := []struct {
		name string
		conv Conversion
		want []string
	}{
		{
			name: "plan subscription with all fields",
			conv: Conversion{
				Name: "Ana Silva", Phone: "(16) 99999-0000", Email: "ana@x.com",
				ButtonType: ButtonPlanSubscription, PlanName: "Familiar",
			},
			want: []string{"assinar o plano Familiar", "Nome: Ana Silva", "Telefone: (16) 99999-0000", "E-mail: ana@x.com"},
		},
		{
			name: "doctor appointment without phone",
			conv: Conversion{
				Name: "João Souza", Email: "joao@x.com",
				ButtonType: ButtonDoctorAppointment, DoctorName: "Dra. Paula",
			},
			want: []string{"consulta com Dra. Paula", "Telefone: Não informado"},
		},
		{
			name: "enterprise quote minimal",
			conv: Conversion{Name: "Carla", ButtonType: ButtonEnterpriseQuote},
			want: []string{"para a minha empresa", "Nome: Carla", "Telefone: Não informado", "E-mail: Não informado"},
		},
		{
			name: "plan subscription without plan name",
			conv: Conversion{Name: "Bia", ButtonType: ButtonPlanSubscription},
			want: []string{"assinar o plano Não informado"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := conversionMessage(tc.conv)
			if err != nil {
				t.Fatalf("conversionMessage: %v", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(msg, w) {
					t.Errorf("message missing %q:\n%s", w, msg)
				}
			}
		})
	}
}

func TestConversionMessageInvalidType(t *testing.T) {
	if _, err := conversionMessage(Conversion{Name: "X"}); err == nil {
		t.Error("expected error for empty button type")
	}
	if _, err := conversionMessage(Conversion{Name: "X", ButtonType: "bogus"}); err == nil {
		t.Error("expected error for unknown button type")
	}
}

func TestIsMobileUserAgent(t *testing.T) {
	mobile := []string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)",
		"Mozilla/5.0 (Linux; Android 13; SM-G991B)",
		"Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X)",
		"Opera/9.80 (J2ME/MIDP; Opera Mini/9.80)",
		"something with BlackBerry inside",
	}
	for _, ua := range mobile {
		if !isMobileUserAgent(ua) {
			t.Errorf("expected mobile for %q", ua)
		}
	}
	desktop := []string{
		"",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
		"curl/8.0.1",
	}
	for _, ua := range desktop {
		if isMobileUserAgent(ua) {
			t.Errorf("expected desktop for %q", ua)
		}
	}
}

func TestBuildWhatsAppURLDeviceBranch(t *testing.T) {
	conv := Conversion{Name: "Ana Silva", ButtonType: ButtonPlanSubscription, PlanName: "Familiar", Email: "ana@x.com"}

	mobileURL, err := buildWhatsAppURL(conv, "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0)")
	if err != nil {
		t.Fatalf("mobile: %v", err)
	}
	if !strings.HasPrefix(mobileURL, "https://wa.me/"+whatsappPhone()+"?text=") {
		t.Errorf("mobile URL = %q, want wa.me deep link", mobileURL)
	}

	desktopURL, err := buildWhatsAppURL(conv, "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0")
	if err != nil {
		t.Fatalf("desktop: %v", err)
	}
	if !strings.HasPrefix(desktopURL, "https://web.whatsapp.com/send?phone="+whatsappPhone()+"&text=") {
		t.Errorf("desktop URL = %q, want web client link", desktopURL)
	}

	// A mensagem decodificada menciona o lead e o plano
	for _, u := range []string{mobileURL, desktopURL} {
		encoded := u[strings.Index(u, "text=")+len("text="):]
		decoded, err := url.QueryUnescape(encoded)
		if err != nil {
			t.Fatalf("unescape: %v", err)
		}
		if !strings.Contains(decoded, "Ana Silva") || !strings.Contains(decoded, "Familiar") {
			t.Errorf("decoded message missing lead data: %q", decoded)
		}
	}
}

func TestBuildWhatsAppURLRejectsInvalidCategory(t *testing.T) {
	if _, err := buildWhatsAppURL(Conversion{Name: "X", ButtonType: "payment"}, ""); err == nil {
		t.Error("expected error for category outside the fixed set")
	}
}

func TestEncodeMessageUsesPercent20(t *testing.T) {
	enc := encodeMessage("Olá mundo")
	if strings.Contains(enc, "+") {
		t.Errorf("encoded message should not contain '+': %q", enc)
	}
	if !strings.Contains(enc, "%20") {
		t.Errorf("expected %%20 for spaces: %q", enc)
	}
}
