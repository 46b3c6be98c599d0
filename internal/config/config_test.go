package config

import (
	"errors"
	"testing"
	"time"

	"herald/internal/domain"
)

func validConfig() Config {
	return Config{
		EmailProvider:         "smtp",
		SMTPHost:              "smtp.example.com",
		SMTPFrom:              "noreply@example.com",
		SMSProvider:           "sms-regional",
		SMSRegionalBaseURL:    "https://sms.example.com",
		SMSRegionalAccessKey:  "key",
		SMSRegionalTemplateID: "tpl-1",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.SMTPHost = ""
	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("missing smtp host: %v", err)
	}

	cfg = validConfig()
	cfg.SMSProvider = "sms-global"
	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("unconfigured global sms: %v", err)
	}
	cfg.SMSGlobalAccountSID = "sid"
	cfg.SMSGlobalAuthToken = "token"
	cfg.SMSGlobalFrom = "+15550001111"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("configured global sms rejected: %v", err)
	}

	cfg = validConfig()
	cfg.EmailProvider = "carrier-pigeon"
	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("unknown email provider: %v", err)
	}
}

func TestQuotaPolicies(t *testing.T) {
	cfg := validConfig()
	cfg.EmailQuotaWindowSeconds = 3600
	cfg.EmailQuotaGlobalMax = 100
	cfg.EmailQuotaPerRecipient = 5

	policies := cfg.QuotaPolicies()
	email := policies[domain.MediumEmail]
	if email.Window != time.Hour || email.GlobalMax != 100 || email.PerRecipientMax != 5 {
		t.Fatalf("unexpected email policy: %+v", email)
	}
	if _, ok := policies[domain.MediumSMS]; !ok {
		t.Fatal("sms policy missing")
	}
}

func TestAdminIdentities(t *testing.T) {
	cfg := Config{AdminAllowlist: " root@acme.example, ops@acme.example ,,"}
	got := cfg.AdminIdentities()
	if len(got) != 2 || got[0] != "root@acme.example" || got[1] != "ops@acme.example" {
		t.Fatalf("identities = %v", got)
	}
	if ids := (Config{}).AdminIdentities(); ids != nil {
		t.Fatalf("empty allowlist parsed to %v", ids)
	}
}
