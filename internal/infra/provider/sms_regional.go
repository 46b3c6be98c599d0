package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"herald/internal/domain"
)

// Mainland-format mobile numbers only; this gateway refuses anything
// else before a request is even made.
var cnMobilePattern = regexp.MustCompile(`^\+861[3-9]\d{9}$`)

type RegionalSMSConfig struct {
	BaseURL    string
	AccessKey  string
	SignName   string
	TemplateID string
	HTTPClient *http.Client
}

// RegionalSMS is a template-id based gateway restricted to one country
// code. The message body is ignored by the upstream service; only the
// extracted code parameter and the registered template are used.
type RegionalSMS struct {
	cfg    RegionalSMSConfig
	client *http.Client
}

func NewRegionalSMS(cfg RegionalSMSConfig) (*RegionalSMS, error) {
	if cfg.BaseURL == "" || cfg.AccessKey == "" || cfg.TemplateID == "" {
		return nil, fmt.Errorf("%w: regional sms base url, access key and template id", domain.ErrConfigurationMissing)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RegionalSMS{cfg: cfg, client: client}, nil
}

func (p *RegionalSMS) Name() string { return "sms-regional" }

func (p *RegionalSMS) ValidateRecipient(address string) error {
	if !cnMobilePattern.MatchString(address) {
		return fmt.Errorf("%w: regional gateway accepts +86 mobile numbers only", domain.ErrInvalidRecipient)
	}
	return nil
}

type regionalSendRequest struct {
	Phone      string `json:"phone"`
	SignName   string `json:"sign_name,omitempty"`
	TemplateID string `json:"template_id"`
	Content    string `json:"content"`
}

type regionalSendResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

func (p *RegionalSMS) Send(ctx context.Context, address string, msg domain.Message) (domain.Receipt, error) {
	payload, err := json.Marshal(regionalSendRequest{
		Phone:      address,
		SignName:   p.cfg.SignName,
		TemplateID: p.cfg.TemplateID,
		Content:    msg.Text,
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/sms/send", bytes.NewReader(payload))
	if err != nil {
		return domain.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", p.cfg.AccessKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Receipt{}, domain.Transient(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Receipt{}, domain.Transient(err)
	}
	if resp.StatusCode >= 500 {
		return domain.Receipt{}, domain.Transient(fmt.Errorf("regional sms gateway status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Receipt{}, fmt.Errorf("regional sms gateway status %d", resp.StatusCode)
	}

	var decoded regionalSendResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Receipt{}, domain.Transient(fmt.Errorf("regional sms gateway response: %w", err))
	}
	if decoded.Code != 0 {
		return domain.Receipt{}, fmt.Errorf("regional sms gateway rejected send: code %d %s", decoded.Code, decoded.Message)
	}
	return domain.Receipt{MessageID: decoded.MessageID}, nil
}

var _ domain.Provider = (*RegionalSMS)(nil)
