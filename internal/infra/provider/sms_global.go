package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"herald/internal/domain"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

type GlobalSMSConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	HTTPClient *http.Client
}

// GlobalSMS is a programmable REST gateway taking free-form message
// bodies for any E.164 number.
type GlobalSMS struct {
	cfg    GlobalSMSConfig
	client *http.Client
}

func NewGlobalSMS(cfg GlobalSMSConfig) (*GlobalSMS, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: global sms account sid, auth token and sender number", domain.ErrConfigurationMissing)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GlobalSMS{cfg: cfg, client: client}, nil
}

func (p *GlobalSMS) Name() string { return "sms-global" }

func (p *GlobalSMS) ValidateRecipient(address string) error {
	if !e164Pattern.MatchString(address) {
		return fmt.Errorf("%w: expected E.164 number", domain.ErrInvalidRecipient)
	}
	return nil
}

func (p *GlobalSMS) Send(ctx context.Context, address string, msg domain.Message) (domain.Receipt, error) {
	form := url.Values{}
	form.Set("To", address)
	form.Set("From", p.cfg.From)
	form.Set("Body", msg.Text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Receipt{}, domain.Transient(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Receipt{}, domain.Transient(err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return domain.Receipt{}, domain.Transient(fmt.Errorf("global sms gateway status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Receipt{}, fmt.Errorf("global sms gateway status %d: %s", resp.StatusCode, firstLine(body))
	}

	var decoded struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Receipt{}, domain.Transient(fmt.Errorf("global sms gateway response: %w", err))
	}
	return domain.Receipt{MessageID: decoded.SID}, nil
}

func firstLine(body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

var _ domain.Provider = (*GlobalSMS)(nil)
