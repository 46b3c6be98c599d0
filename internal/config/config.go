package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"herald/internal/domain"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AdminAPIKey     string
	AdminAllowlist  string
	AdminPolicyPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CounterMaxKeys int

	EmailProvider string
	SMSProvider   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	SMSRegionalBaseURL    string
	SMSRegionalAccessKey  string
	SMSRegionalSignName   string
	SMSRegionalTemplateID string

	SMSGlobalBaseURL    string
	SMSGlobalAccountSID string
	SMSGlobalAuthToken  string
	SMSGlobalFrom       string

	EmailQuotaWindowSeconds int
	EmailQuotaGlobalMax     int
	EmailQuotaPerRecipient  int
	SMSQuotaWindowSeconds   int
	SMSQuotaGlobalMax       int
	SMSQuotaPerRecipient    int

	BrandTitle   string
	BrandAppName string
	BrandContact string

	TemplateDir string

	RetryBaseMillis       int
	IdempotencyTTLSeconds int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),

		AdminAPIKey:     os.Getenv("ADMIN_API_KEY"),
		AdminAllowlist:  os.Getenv("ADMIN_ALLOWLIST"),
		AdminPolicyPath: os.Getenv("ADMIN_POLICY_PATH"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntDefault("REDIS_DB", 0),

		CounterMaxKeys: envIntDefault("COUNTER_MAX_KEYS", 10000),

		EmailProvider: envDefault("EMAIL_PROVIDER", "smtp"),
		SMSProvider:   envDefault("SMS_PROVIDER", "sms-regional"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envIntDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		SMSRegionalBaseURL:    os.Getenv("SMS_REGIONAL_BASE_URL"),
		SMSRegionalAccessKey:  os.Getenv("SMS_REGIONAL_ACCESS_KEY"),
		SMSRegionalSignName:   os.Getenv("SMS_REGIONAL_SIGN_NAME"),
		SMSRegionalTemplateID: os.Getenv("SMS_REGIONAL_TEMPLATE_ID"),

		SMSGlobalBaseURL:    os.Getenv("SMS_GLOBAL_BASE_URL"),
		SMSGlobalAccountSID: os.Getenv("SMS_GLOBAL_ACCOUNT_SID"),
		SMSGlobalAuthToken:  os.Getenv("SMS_GLOBAL_AUTH_TOKEN"),
		SMSGlobalFrom:       os.Getenv("SMS_GLOBAL_FROM"),

		EmailQuotaWindowSeconds: envIntDefault("EMAIL_QUOTA_WINDOW_SECONDS", 86400),
		EmailQuotaGlobalMax:     envIntDefault("EMAIL_QUOTA_GLOBAL_MAX", 10000),
		EmailQuotaPerRecipient:  envIntDefault("EMAIL_QUOTA_PER_RECIPIENT", 10),
		SMSQuotaWindowSeconds:   envIntDefault("SMS_QUOTA_WINDOW_SECONDS", 86400),
		SMSQuotaGlobalMax:       envIntDefault("SMS_QUOTA_GLOBAL_MAX", 5000),
		SMSQuotaPerRecipient:    envIntDefault("SMS_QUOTA_PER_RECIPIENT", 5),

		BrandTitle:   envDefault("BRAND_TITLE", "Account notification"),
		BrandAppName: envDefault("BRAND_APP_NAME", "Herald"),
		BrandContact: os.Getenv("BRAND_CONTACT"),

		TemplateDir: os.Getenv("TEMPLATE_DIR"),

		RetryBaseMillis:       envIntDefault("RETRY_BASE_MILLIS", 500),
		IdempotencyTTLSeconds: envIntDefault("IDEMPOTENCY_TTL_SECONDS", 600),
	}
}

// Validate rejects a configuration whose selected providers cannot be
// constructed. Unselected providers may be partially configured.
func (c Config) Validate() error {
	switch c.EmailProvider {
	case "smtp":
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("%w: SMTP_HOST and SMTP_FROM are required for the smtp provider", domain.ErrConfigurationMissing)
		}
	default:
		return fmt.Errorf("%w: unknown email provider %q", domain.ErrConfigurationMissing, c.EmailProvider)
	}
	switch c.SMSProvider {
	case "sms-regional":
		if c.SMSRegionalBaseURL == "" || c.SMSRegionalAccessKey == "" || c.SMSRegionalTemplateID == "" {
			return fmt.Errorf("%w: SMS_REGIONAL_BASE_URL, SMS_REGIONAL_ACCESS_KEY and SMS_REGIONAL_TEMPLATE_ID are required for the sms-regional provider", domain.ErrConfigurationMissing)
		}
	case "sms-global":
		if c.SMSGlobalAccountSID == "" || c.SMSGlobalAuthToken == "" || c.SMSGlobalFrom == "" {
			return fmt.Errorf("%w: SMS_GLOBAL_ACCOUNT_SID, SMS_GLOBAL_AUTH_TOKEN and SMS_GLOBAL_FROM are required for the sms-global provider", domain.ErrConfigurationMissing)
		}
	default:
		return fmt.Errorf("%w: unknown sms provider %q", domain.ErrConfigurationMissing, c.SMSProvider)
	}
	return nil
}

func (c Config) QuotaPolicies() map[domain.Medium]domain.QuotaPolicy {
	return map[domain.Medium]domain.QuotaPolicy{
		domain.MediumEmail: {
			Window:          time.Duration(c.EmailQuotaWindowSeconds) * time.Second,
			GlobalMax:       c.EmailQuotaGlobalMax,
			PerRecipientMax: c.EmailQuotaPerRecipient,
		},
		domain.MediumSMS: {
			Window:          time.Duration(c.SMSQuotaWindowSeconds) * time.Second,
			GlobalMax:       c.SMSQuotaGlobalMax,
			PerRecipientMax: c.SMSQuotaPerRecipient,
		},
	}
}

func (c Config) Branding() domain.Branding {
	return domain.Branding{
		Title:   c.BrandTitle,
		AppName: c.BrandAppName,
		Contact: c.BrandContact,
	}
}

func (c Config) AdminIdentities() []string {
	if strings.TrimSpace(c.AdminAllowlist) == "" {
		return nil
	}
	parts := strings.Split(c.AdminAllowlist, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) RetryBase() time.Duration {
	if c.RetryBaseMillis <= 0 {
		return 0
	}
	return time.Duration(c.RetryBaseMillis) * time.Millisecond
}

func (c Config) IdempotencyTTL() time.Duration {
	if c.IdempotencyTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.IdempotencyTTLSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
